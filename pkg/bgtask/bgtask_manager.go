package bgtask

import (
	"github.com/stleox/seetrace/pkg/layer"
)

// BgTaskManager manages background periodical tasks.
// Includes:
// - Flush the archive layer's pending batch
type BgTaskManager struct {
	bgTasks []BgTask
	archive *layer.Archive
}

type BgTask interface {
	Start()
	Stop()
}

func NewBgTaskManager(archive *layer.Archive) *BgTaskManager {
	m := &BgTaskManager{
		bgTasks: make([]BgTask, 0),
		archive: archive,
	}
	m.addFlushTask()
	return m
}

func (m *BgTaskManager) StartAll() {
	for _, task := range m.bgTasks {
		task.Start()
	}
}

func (m *BgTaskManager) StopAll() {
	for _, task := range m.bgTasks {
		task.Stop()
	}
}
