package layer

import (
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stleox/seetrace/pkg/config"
	"github.com/stleox/seetrace/pkg/registry"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// Archive persists closed spans into an OLAP table through a bulk
// inserter. Inserts are buffered; Flush pushes the tail batch.
type Archive struct {
	Base

	conn         sqlx.SqlConn
	spanInserter *sqlx.BulkInserter

	numClosed atomic.Int64
}

func NewArchive(vp *viper.Viper) *Archive {
	// conn to the OLAP server
	olapDSN := vp.GetString("SEETRACE_OLAP_DSN")
	if olapDSN == "" {
		olapDSN = config.SEETRACE_DEFAULT_DSN
	}

	db := sqlx.NewMysql(olapDSN)

	err := CreateSpanTable(db)
	if err != nil {
		logrus.WithError(err).Error("SeeTrace couldn't create table t_Span")
		return nil
	}

	spanInserter, err := NewSpanInserter(db)
	if err != nil {
		logrus.WithError(err).Error("SeeTrace couldn't open table t_Span")
		return nil
	}

	return &Archive{
		conn:         db,
		spanInserter: spanInserter,
	}
}

func CreateSpanTable(db sqlx.SqlConn) error {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS `t_Span` " +
		"(id VARCHAR(24), " +
		"name VARCHAR(128), " +
		"target VARCHAR(256), " +
		"level VARCHAR(8), " +
		"parent VARCHAR(24), " +
		"start_time DATETIME(6), " +
		"end_time DATETIME(6)) " +
		"DISTRIBUTED BY HASH(id) BUCKETS 32 " +
		"PROPERTIES (\"replication_num\" = \"1\");")
	return err
}

func NewSpanInserter(db sqlx.SqlConn) (*sqlx.BulkInserter, error) {
	return sqlx.NewBulkInserter(db, "INSERT INTO `t_Span` "+
		"(id, "+
		"name, "+
		"target, "+
		"level, "+
		"parent, "+
		"start_time, "+
		"end_time) "+
		"VALUES (?,?,?,?,?,?,?)")
}

func (a *Archive) OnClose(id registry.SpanID, rec *registry.Record) {
	if a == nil {
		return
	}
	md := rec.Metadata()
	a.numClosed.Add(1)
	err := a.spanInserter.Insert(
		id.String(),
		md.Name,
		md.Target,
		md.Level.String(),
		rec.Parent().String(),
		rec.Start().String()[:config.L_DATE6],
		time.Now().String()[:config.L_DATE6])
	if err != nil {
		logrus.WithError(err).WithField("span", id.String()).Warn("SeeTrace couldn't insert span")
	}
}

func (a *Archive) Flush() {
	if a == nil {
		return
	}
	a.spanInserter.Flush()
}

// Summary logs how many spans closed versus how many landed in the table.
func (a *Archive) Summary() {
	if a == nil {
		return
	}
	logrus.Infof("SeeTrace archived %d of %d closed spans", a.countSpans(), a.numClosed.Load())
}

func (a *Archive) countSpans() int {
	var count int
	err := a.conn.QueryRow(&count, "SELECT COUNT(*) FROM `t_Span`")
	if err != nil {
		logrus.WithError(err).Error("SeeTrace couldn't count archived spans")
	}
	return count
}
