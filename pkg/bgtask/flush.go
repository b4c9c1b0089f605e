package bgtask

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/config"
	"github.com/stleox/seetrace/pkg/layer"
)

// flushTask pushes the archive layer's pending batch on a schedule, so
// closed spans land in the table even when traffic stalls below the bulk
// threshold.
type flushTask struct {
	archive *layer.Archive
	c       *cron.Cron
}

func (m *BgTaskManager) addFlushTask() {
	if m.archive == nil {
		return
	}
	m.bgTasks = append(m.bgTasks, &flushTask{archive: m.archive})
}

func (t *flushTask) Start() {
	c := cron.New()
	_, err := c.AddFunc(config.FlushSchedule, func() {
		t.archive.Flush()
	})
	if err != nil {
		logrus.WithError(err).Error("SeeTrace couldn't schedule the archive flush")
		return
	}
	t.c = c
	c.Start()
}

func (t *flushTask) Stop() {
	if t.c == nil {
		return
	}
	t.c.Stop()
	// push whatever is still buffered
	t.archive.Flush()
}
