// Package scheduler runs the periodic reminder sweep: every interval it
// asks the store for due (meeting, offset) pairs, pushes the reminder,
// and flips the sent flag only after the push succeeded. A failed push is
// retried on the next tick while the minute window holds; a missed window
// is dropped rather than duplicated.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/weichenlin/tripmate/internal/card"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/push"
)

const defaultInterval = 60 * time.Second

type Scheduler struct {
	db       *database.DB
	sender   push.Sender
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time
}

func New(db *database.DB, sender push.Sender, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		db:       db,
		sender:   sender,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// Start launches the sweep loop on a dedicated goroutine.
func (s *Scheduler) Start() {
	log.Printf("Scheduler: started (interval %s)", s.interval)
	s.wg.Add(1)
	go s.run()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Println("Scheduler: stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
			// A tick that queued up behind a long sweep is skipped,
			// not run back to back.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// sweep performs one reminder pass at the current wall clock.
func (s *Scheduler) sweep() {
	now := s.now()

	due, err := s.db.DueReminders(now)
	if err != nil {
		log.Printf("Scheduler: due query failed: %v", err)
		return
	}

	for _, item := range due {
		s.fire(item)
	}
}

func (s *Scheduler) fire(item database.DueReminder) {
	// The sweep snapshot may be stale: honour a cancellation that landed
	// after DueReminders selected the row.
	m, err := s.db.GetMeeting(item.Meeting.ID)
	if err != nil || m.Status != database.MeetingStatusActive {
		return
	}

	text := reminderText(item.Offset, m.Place)
	msg, err := card.Render(card.Reminder, map[string]any{"text": text})
	if err != nil {
		log.Printf("Scheduler: render failed for meeting %d: %v", m.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 8*time.Second)
	defer cancel()
	if err := s.sender.Push(ctx, m.OwnerUserID, []messaging_api.MessageInterface{msg}); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("Scheduler: push failed for meeting %d offset -%d: %v", m.ID, item.Offset, err)
		}
		// Flag stays down so the next tick retries while still due.
		return
	}

	if _, err := s.db.MarkReminderSent(m.ID, item.Offset); err != nil {
		log.Printf("Scheduler: mark sent failed for meeting %d offset -%d: %v", m.ID, item.Offset, err)
	}
}

func reminderText(offset database.Offset, place string) string {
	switch offset {
	case database.OffsetMinus10:
		return fmt.Sprintf("⏰ 還有 10 分鐘就要在 %s 集合了！", place)
	case database.OffsetMinus5:
		return fmt.Sprintf("🚨 還有 5 分鐘就要在 %s 集合了！", place)
	default:
		return fmt.Sprintf("🎯 集合時間到了！請準時到達 %s！", place)
	}
}
