package plan

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a read-only, flattened projection of an approved plan.
//
// Stages, tasks and task materials are loaded as flat lists and indexed
// by id once, so the engines never navigate lazily through the graph.
type Snapshot struct {
	Plan      Plan
	Group     Group
	Stages    []Stage
	Tasks     []Task
	Materials []TaskMaterial

	tasksByStage    map[uuid.UUID][]Task
	materialsByTask map[uuid.UUID][]TaskMaterial
	indexed         bool
}

// TaskRef pairs a task with the stage it belongs to
type TaskRef struct {
	Stage Stage
	Task  Task
}

// NewSnapshot builds and indexes a snapshot
func NewSnapshot(p Plan, g Group, stages []Stage, tasks []Task, materials []TaskMaterial) *Snapshot {
	s := &Snapshot{
		Plan:      p,
		Group:     g,
		Stages:    stages,
		Tasks:     tasks,
		Materials: materials,
	}
	s.index()
	return s
}

func (s *Snapshot) index() {
	if s.indexed {
		return
	}
	s.tasksByStage = make(map[uuid.UUID][]Task)
	for _, t := range s.Tasks {
		s.tasksByStage[t.StageID] = append(s.tasksByStage[t.StageID], t)
	}
	for stageID := range s.tasksByStage {
		tasks := s.tasksByStage[stageID]
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].SequenceOrder < tasks[j].SequenceOrder
		})
	}

	s.materialsByTask = make(map[uuid.UUID][]TaskMaterial)
	for _, m := range s.Materials {
		s.materialsByTask[m.TaskID] = append(s.materialsByTask[m.TaskID], m)
	}
	s.indexed = true
}

// StagesInOrder returns the stages sorted by SequenceOrder
func (s *Snapshot) StagesInOrder() []Stage {
	stages := make([]Stage, len(s.Stages))
	copy(stages, s.Stages)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].SequenceOrder < stages[j].SequenceOrder
	})
	return stages
}

// TasksOf returns the tasks of a stage sorted by SequenceOrder
func (s *Snapshot) TasksOf(stageID uuid.UUID) []Task {
	s.index()
	return s.tasksByStage[stageID]
}

// MaterialsOf returns the material requirements of a task
func (s *Snapshot) MaterialsOf(taskID uuid.UUID) []TaskMaterial {
	s.index()
	return s.materialsByTask[taskID]
}

// TasksInSequence walks every task in (stage order, task order).
// Tasks whose stage is not part of the snapshot are ignored.
func (s *Snapshot) TasksInSequence() []TaskRef {
	s.index()
	refs := make([]TaskRef, 0, len(s.Tasks))
	for _, st := range s.StagesInOrder() {
		for _, t := range s.tasksByStage[st.ID] {
			refs = append(refs, TaskRef{Stage: st, Task: t})
		}
	}
	return refs
}

// HasTasks reports whether at least one stage carries a task
func (s *Snapshot) HasTasks() bool {
	return len(s.TasksInSequence()) > 0
}

// TaskIDs returns the ids of every task reachable from the plan's stages
func (s *Snapshot) TaskIDs() []uuid.UUID {
	refs := s.TasksInSequence()
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.Task.ID)
	}
	return ids
}

// MaterialIDs returns the distinct material ids referenced by the plan
func (s *Snapshot) MaterialIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, ref := range s.TasksInSequence() {
		for _, m := range s.MaterialsOf(ref.Task.ID) {
			if _, ok := seen[m.MaterialID]; ok {
				continue
			}
			seen[m.MaterialID] = struct{}{}
			ids = append(ids, m.MaterialID)
		}
	}
	return ids
}

// EarliestScheduledEndDate returns the minimum ScheduledEndDate over all tasks.
// The second result is false when no task carries an end date.
func (s *Snapshot) EarliestScheduledEndDate() (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, ref := range s.TasksInSequence() {
		end := ref.Task.ScheduledEndDate
		if end == nil {
			continue
		}
		if !found || end.Before(earliest) {
			earliest = *end
			found = true
		}
	}
	return earliest, found
}
