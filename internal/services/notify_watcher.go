package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
)

// Alert kinds emitted by the watcher
const (
	AlertInbox   = "inbox"
	AlertSupport = "support"
	AlertDeposit = "deposit"
)

// Alert reports that a watched counter increased between two polls
type Alert struct {
	Kind     string `json:"kind"`
	Previous int64  `json:"previous"`
	Current  int64  `json:"current"`
}

// NotifyWatcher re-polls a user's unread inbox count, unread support count
// and recent deposit count on a fixed period and emits an alert for every
// increase. One instance watches one user; collaborators are injected so
// tests can build isolated instances.
type NotifyWatcher struct {
	userID    primitive.ObjectID
	inboxRepo repositories.InboxRepository
	txnRepo   repositories.TransactionRepository
	interval  time.Duration
	log       *zap.Logger

	alerts chan Alert
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	lastInbox    int64
	lastSupport  int64
	lastDeposits int64
	primed       bool
	since        time.Time
}

// NewNotifyWatcher creates a watcher for one user
func NewNotifyWatcher(
	userID primitive.ObjectID,
	inboxRepo repositories.InboxRepository,
	txnRepo repositories.TransactionRepository,
	interval time.Duration,
	log *zap.Logger,
) *NotifyWatcher {
	return &NotifyWatcher{
		userID:    userID,
		inboxRepo: inboxRepo,
		txnRepo:   txnRepo,
		interval:  interval,
		log:       log,
		alerts:    make(chan Alert, 16),
		done:      make(chan struct{}),
		since:     time.Now().Add(-24 * time.Hour),
	}
}

// Alerts returns the channel the watcher emits on. Closed after Stop.
func (w *NotifyWatcher) Alerts() <-chan Alert {
	return w.alerts
}

// Start begins polling. The first poll primes the baseline and never
// alerts. Start returns immediately; call Stop to end the loop.
func (w *NotifyWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		defer close(w.done)
		defer close(w.alerts)

		w.tick(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.tick(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for it to exit. Safe to call twice.
func (w *NotifyWatcher) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		<-w.done
	})
}

// tick fetches the three counters and emits alerts on increases
func (w *NotifyWatcher) tick(ctx context.Context) {
	counts, err := w.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn("notify watcher poll failed", zap.Error(err))
		}
		return
	}

	if w.primed {
		w.compare(AlertInbox, w.lastInbox, counts.UnreadInbox)
		w.compare(AlertSupport, w.lastSupport, counts.UnreadSupport)
		w.compare(AlertDeposit, w.lastDeposits, counts.RecentDeposits)
	}

	w.lastInbox = counts.UnreadInbox
	w.lastSupport = counts.UnreadSupport
	w.lastDeposits = counts.RecentDeposits
	w.primed = true
}

func (w *NotifyWatcher) fetch(ctx context.Context) (*models.InboxCounts, error) {
	unread, err := w.inboxRepo.CountUnread(ctx, w.userID)
	if err != nil {
		return nil, err
	}
	support, err := w.inboxRepo.CountUnreadByType(ctx, w.userID, models.InboxTypeSupportReply)
	if err != nil {
		return nil, err
	}
	deposits, err := w.txnRepo.CountSince(ctx, w.userID, models.TransactionCredit, w.since)
	if err != nil {
		return nil, err
	}
	return &models.InboxCounts{
		UnreadInbox:    unread,
		UnreadSupport:  support,
		RecentDeposits: deposits,
	}, nil
}

// compare emits an alert when a counter increased. The channel is buffered;
// a full buffer drops the alert rather than stalling the poll loop.
func (w *NotifyWatcher) compare(kind string, previous, current int64) {
	if current <= previous {
		return
	}
	select {
	case w.alerts <- Alert{Kind: kind, Previous: previous, Current: current}:
	default:
		w.log.Warn("alert dropped, consumer too slow", zap.String("kind", kind))
	}
}
