package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual планировщик с ручным управлением временем. Действия выполняются только
// в Advance и Frame, в порядке срока, при равном сроке - в порядке постановки
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	tasks  []*manualTask
	frames []func()
}

type manualTask struct {
	manual  *Manual
	at      time.Duration
	seq     int
	f       func()
	stopped bool
}

// NewManual конструктор Manual
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc выполнить f через d
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	task := &manualTask{manual: m, at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, task)
	return task
}

// NextFrame выполнить f на следующем Frame
func (m *Manual) NextFrame(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
}

// Frame выполняет действия, запрошенные до его вызова
func (m *Manual) Frame() {
	m.mu.Lock()
	frames := m.frames
	m.frames = nil
	m.mu.Unlock()
	for _, f := range frames {
		f()
	}
}

// Advance сдвигает время на d и выполняет наступившие действия, включая
// поставленные во время выполнения
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		task := m.nextDue(target)
		if task == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = task.at
		m.mu.Unlock()
		task.f()
	}
}

// Pending колличество ожидающих действий
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Извлекает ближайшее действие со сроком не позже target
func (m *Manual) nextDue(target time.Duration) *manualTask {
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at == m.tasks[j].at {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at < m.tasks[j].at
	})
	for len(m.tasks) != 0 {
		task := m.tasks[0]
		if task.stopped {
			m.tasks = m.tasks[1:]
			continue
		}
		if task.at > target {
			return nil
		}
		m.tasks = m.tasks[1:]
		return task
	}
	return nil
}

// Stop отменяет действие. Возвращает false, если оно уже выполнено или отменено
func (t *manualTask) Stop() bool {
	t.manual.mu.Lock()
	defer t.manual.mu.Unlock()
	if t.stopped {
		return false
	}
	for _, task := range t.manual.tasks {
		if task == t {
			t.stopped = true
			return true
		}
	}
	return false
}
