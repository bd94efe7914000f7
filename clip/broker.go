package clip

import (
	"context"
	"sync"

	"github.com/fwojciec/clipnote"
)

// subscriptionBuffer is the number of undelivered events kept per subscriber.
const subscriptionBuffer = 16

// Event reports a change to a tab's task record. Task is nil when the
// record was deleted.
type Event struct {
	TabID int            `json:"tabId"`
	Task  *clipnote.Task `json:"task,omitempty"`
}

// Deleted reports whether the event is a deletion.
func (e Event) Deleted() bool { return e.Task == nil }

// Broker fans task changes out to per-tab subscribers.
type Broker struct {
	mu   sync.Mutex
	subs map[int]map[*Subscription]struct{}
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]map[*Subscription]struct{})}
}

// Subscription receives events for one tab until closed.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	tabID  int
	broker *Broker
	once   sync.Once
}

// Subscribe registers a subscriber for the tab's events.
func (b *Broker) Subscribe(tabID int) *Subscription {
	ch := make(chan Event, subscriptionBuffer)
	s := &Subscription{C: ch, ch: ch, tabID: tabID, broker: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[tabID] == nil {
		b.subs[tabID] = make(map[*Subscription]struct{})
	}
	b.subs[tabID][s] = struct{}{}
	return s
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.broker
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[s.tabID], s)
		if len(b.subs[s.tabID]) == 0 {
			delete(b.subs, s.tabID)
		}
		close(s.ch)
	})
}

// Publish delivers ev to the tab's subscribers without blocking. A
// subscriber that fell behind loses its oldest event, so the latest state
// is always delivered.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs[ev.TabID] {
		select {
		case s.ch <- ev:
		default:
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- ev:
			default:
			}
		}
	}
}

// Acknowledge deletes the tab's record once a surface has seen taskID
// finish. Acknowledging a missing, replaced or still active task is a no-op,
// so repeated acknowledgements are harmless.
func Acknowledge(ctx context.Context, tasks clipnote.TaskService, tabID int, taskID string) error {
	task, err := tasks.FindTask(ctx, tabID)
	if clipnote.ErrorCode(err) == clipnote.ENOTFOUND {
		return nil
	} else if err != nil {
		return err
	}
	if task.ID != taskID || !task.IsTerminal() {
		return nil
	}
	return tasks.DeleteTask(ctx, tabID)
}

var _ clipnote.TaskService = (*NotifyingTaskService)(nil)

// NotifyingTaskService wraps a TaskService and publishes every successful
// write to a Broker.
type NotifyingTaskService struct {
	clipnote.TaskService
	broker *Broker
}

// NewNotifyingTaskService returns a TaskService publishing changes to broker.
func NewNotifyingTaskService(next clipnote.TaskService, broker *Broker) *NotifyingTaskService {
	return &NotifyingTaskService{TaskService: next, broker: broker}
}

func (s *NotifyingTaskService) CreateTask(ctx context.Context, task *clipnote.Task) error {
	if err := s.TaskService.CreateTask(ctx, task); err != nil {
		return err
	}
	s.publish(task)
	return nil
}

func (s *NotifyingTaskService) PutTask(ctx context.Context, task *clipnote.Task) error {
	if err := s.TaskService.PutTask(ctx, task); err != nil {
		return err
	}
	s.publish(task)
	return nil
}

func (s *NotifyingTaskService) DeleteTask(ctx context.Context, tabID int) error {
	if err := s.TaskService.DeleteTask(ctx, tabID); err != nil {
		return err
	}
	s.broker.Publish(Event{TabID: tabID})
	return nil
}

// publish sends a copy so subscribers never observe later mutations.
func (s *NotifyingTaskService) publish(task *clipnote.Task) {
	cp := *task
	s.broker.Publish(Event{TabID: task.TabID, Task: &cp})
}
