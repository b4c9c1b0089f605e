// Package demo wires a full pipeline from flags and environment, then
// emits a small span tree through it. It doubles as the end-to-end check
// of the installed stack.
package demo

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stleox/seetrace/pkg/bgtask"
	"github.com/stleox/seetrace/pkg/bridge"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/config"
	"github.com/stleox/seetrace/pkg/dispatch"
	"github.com/stleox/seetrace/pkg/filter"
	"github.com/stleox/seetrace/pkg/layer"
)

var (
	mdRequest = callsite.NewSpan("handle_request", "demo::server", callsite.LevelInfo, "method", "path")
	mdQuery   = callsite.NewSpan("query", "demo::server::db", callsite.LevelDebug, "table")
	mdHit     = callsite.NewEvent("cache_hit", "demo::server::cache", callsite.LevelDebug, "key")
)

func New(vp *viper.Viper) *cobra.Command {
	var (
		exporter string
		olap     bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Install a pipeline and emit a sample span tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), vp, exporter, olap)
		},
	}
	cmd.Flags().StringVar(&exporter, "exporter", "none", "OTel exporter: none, stdout or grpc")
	cmd.Flags().BoolVar(&olap, "olap", false, "Archive closed spans into the OLAP table")
	return cmd
}

func run(ctx context.Context, vp *viper.Viper, exporter string, olap bool) error {
	f := filter.New(config.Directives(vp))

	b := layer.NewBuilder().
		With(layer.WithFilter(layer.NewConsole(), f))

	var shutdown func(context.Context) error
	if exporter != "none" {
		exp := layer.NewExport()
		var err error
		switch exporter {
		case "grpc":
			shutdown, err = exp.InitGRPCExporter(ctx)
		default:
			shutdown, err = exp.InitStdoutExporter()
		}
		if err != nil {
			return err
		}
		b.With(layer.WithFilter(exp, f))
	}

	var archive *layer.Archive
	if olap {
		archive = layer.NewArchive(vp)
		if archive != nil {
			b.With(layer.WithFilter(archive, f))
		}
	}

	d := dispatch.New(b.Build())
	if err := dispatch.Install(d); err != nil {
		logrus.WithError(err).Warn("SeeTrace couldn't install the pipeline")
	}

	tasks := bgtask.NewBgTaskManager(archive)
	tasks.StartAll()
	defer tasks.StopAll()

	// bridge the process logger through the same pipeline
	bridged := logrus.New()
	bridged.AddHook(bridge.NewHook(d))

	emit(d, bridged)

	archive.Summary()
	if shutdown != nil {
		return shutdown(ctx)
	}
	return nil
}

func emit(d *dispatch.Dispatcher, log *logrus.Logger) {
	req := d.NewSpan(mdRequest, callsite.Fields{"method": "GET", "path": "/users"})
	guard := d.Enter(req)
	defer func() {
		guard.Exit()
		d.Drop(req)
	}()

	d.Event(mdHit, callsite.Fields{"key": "users:index"})

	q := d.NewSpan(mdQuery, callsite.Fields{"table": "users"})
	qg := d.Enter(q)
	d.Record(q, callsite.Fields{"rows": "42"})
	qg.Exit()
	d.Drop(q)

	log.WithField("path", "/users").Info("request served")
}
