package shows

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cinebook/internal/notifications"
	"cinebook/internal/realtime"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/constants"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"
)

// StaleBookingExpirer cancels bookings whose payment never arrived.
// Satisfied by the bookings repository; declared here so the scheduler
// does not import the bookings package.
type StaleBookingExpirer interface {
	ExpireStalePendingBookings(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpirationScheduler releases seat holds whose TTL lapsed without a
// confirmed payment. Primary path: a one-time job armed when the first
// hold lands on a show. Backstop: a periodic sweep that catches holds
// whose job was lost to a crash or restart, and expires the pending
// bookings those holds belonged to.
//
// Arming is deduplicated through a Redis SET NX marker so a burst of
// selections on one show schedules a single job. With Redis down the
// scheduler falls back to an in-process marker set, which still dedupes
// within one instance.
type ExpirationScheduler struct {
	sched          gocron.Scheduler
	repo           Repository
	redis          *redis.Client
	cache          cache.Service
	publisher      realtime.Publisher
	notifier       notifications.Service
	bookingExpirer StaleBookingExpirer
	cfg            config.BookingConfig
	log            *logger.Logger

	mu    sync.Mutex
	armed map[uuid.UUID]struct{} // fallback markers when Redis is unavailable

	stopSweep context.CancelFunc
}

func NewExpirationScheduler(
	sched gocron.Scheduler,
	repo Repository,
	redisClient *redis.Client,
	cacheService cache.Service,
	publisher realtime.Publisher,
	notifier notifications.Service,
	bookingExpirer StaleBookingExpirer,
	cfg config.BookingConfig,
	log *logger.Logger,
) *ExpirationScheduler {
	return &ExpirationScheduler{
		sched:          sched,
		repo:           repo,
		redis:          redisClient,
		cache:          cacheService,
		publisher:      publisher,
		notifier:       notifier,
		bookingExpirer: bookingExpirer,
		cfg:            cfg,
		log:            log,
		armed:          make(map[uuid.UUID]struct{}),
	}
}

// Start runs the job scheduler and the periodic safety sweep.
func (es *ExpirationScheduler) Start(ctx context.Context) {
	es.sched.Start()

	sweepCtx, cancel := context.WithCancel(ctx)
	es.stopSweep = cancel
	go es.runSafetySweep(sweepCtx)
}

// Shutdown stops the sweep loop and the underlying scheduler.
func (es *ExpirationScheduler) Shutdown() error {
	if es.stopSweep != nil {
		es.stopSweep()
	}
	return es.sched.Shutdown()
}

// Arm schedules the expiry job for a show if none is pending. Callers
// treat an error here as a hard failure: a hold without a scheduled
// release must not survive.
func (es *ExpirationScheduler) Arm(ctx context.Context, showID uuid.UUID) error {
	armedNow, err := es.tryArm(ctx, showID)
	if err != nil {
		return err
	}
	if !armedNow {
		// A job is already scheduled for this show.
		return nil
	}

	runAt := time.Now().Add(es.cfg.HoldTTL)
	_, err = es.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runAt)),
		gocron.NewTask(func(id uuid.UUID) {
			es.SweepShow(context.Background(), id)
		}, showID),
	)
	if err != nil {
		es.disarm(ctx, showID)
		return err
	}
	return nil
}

// tryArm claims the arm marker. Returns true when this call planted it.
func (es *ExpirationScheduler) tryArm(ctx context.Context, showID uuid.UUID) (bool, error) {
	if es.redis != nil {
		// Marker lives slightly longer than the TTL so the job always
		// fires before the marker lapses.
		ok, err := es.redis.SetNX(ctx, constants.BuildExpiryArmKey(showID.String()), "1", es.cfg.HoldTTL+time.Minute).Result()
		if err == nil {
			return ok, nil
		}
		es.log.ErrorWithContext(ctx, "redis arm marker failed, using in-process fallback", err, map[string]interface{}{
			"show_id": showID.String(),
		})
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if _, exists := es.armed[showID]; exists {
		return false, nil
	}
	es.armed[showID] = struct{}{}
	return true, nil
}

func (es *ExpirationScheduler) disarm(ctx context.Context, showID uuid.UUID) {
	if es.redis != nil {
		if err := es.redis.Del(ctx, constants.BuildExpiryArmKey(showID.String())).Err(); err != nil {
			es.log.ErrorWithContext(ctx, "failed to clear arm marker", err, map[string]interface{}{
				"show_id": showID.String(),
			})
		}
	}
	es.mu.Lock()
	delete(es.armed, showID)
	es.mu.Unlock()
}

// SweepShow releases the show's expired pending holds, fans out the
// freed seats, and re-arms when younger holds remain.
func (es *ExpirationScheduler) SweepShow(ctx context.Context, showID uuid.UUID) {
	cutoff := time.Now().Add(-es.cfg.HoldTTL)

	released, err := es.repo.ReleaseExpiredHolds(ctx, showID, cutoff)
	if err != nil {
		es.log.ErrorWithContext(ctx, "failed to release expired holds", err, map[string]interface{}{
			"show_id": showID.String(),
		})
		// Marker stays down so the safety sweep retries.
		es.disarm(ctx, showID)
		return
	}

	es.disarm(ctx, showID)

	if len(released) > 0 {
		es.log.LogHoldsSwept(ctx, showID.String(), int64(len(released)))
		es.fanOutReleases(ctx, showID, released)
	}

	es.rearmIfPendingRemain(ctx, showID)
}

func (es *ExpirationScheduler) fanOutReleases(ctx context.Context, showID uuid.UUID, released []BookedSeat) {
	if es.cache != nil {
		if err := es.cache.Delete(ctx, constants.BuildShowSeatsKey(showID.String())); err != nil {
			es.log.ErrorWithContext(ctx, "failed to invalidate seat cache", err, nil)
		}
	}

	seatNumbers := make([]string, 0, len(released))
	byUser := make(map[uuid.UUID][]string)
	for _, seat := range released {
		seatNumbers = append(seatNumbers, seat.SeatNumber)
		byUser[seat.UserID] = append(byUser[seat.UserID], seat.SeatNumber)
	}

	// Seat map watchers see the seats free again.
	if err := es.publisher.PublishSeatUpdate(ctx, showID, seatNumbers, realtime.SeatStatusAvailable); err != nil {
		es.log.ErrorWithContext(ctx, "failed to publish released seats", err, nil)
	}

	if es.notifier != nil {
		show, err := es.repo.GetByID(ctx, showID)
		if err != nil {
			es.log.ErrorWithContext(ctx, "failed to load show for release notifications", err, nil)
			return
		}
		for userID, seats := range byUser {
			es.notifier.NotifySeatsReleased(ctx, userID, showID, show.MovieTitle, seats)
		}
	}
}

// rearmIfPendingRemain schedules a fresh job keyed to the oldest
// surviving hold so seats held after the original arm still expire on
// time.
func (es *ExpirationScheduler) rearmIfPendingRemain(ctx context.Context, showID uuid.UUID) {
	seats, err := es.repo.GetBookedSeats(ctx, showID)
	if err != nil {
		es.log.ErrorWithContext(ctx, "failed to check remaining holds", err, map[string]interface{}{
			"show_id": showID.String(),
		})
		return
	}

	var oldest *time.Time
	for i := range seats {
		if !seats[i].IsPending {
			continue
		}
		if oldest == nil || seats[i].HeldAt.Before(*oldest) {
			oldest = &seats[i].HeldAt
		}
	}
	if oldest == nil {
		return
	}

	armedNow, err := es.tryArm(ctx, showID)
	if err != nil || !armedNow {
		return
	}
	runAt := oldest.Add(es.cfg.HoldTTL)
	if runAt.Before(time.Now()) {
		runAt = time.Now().Add(time.Second)
	}
	if _, err := es.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runAt)),
		gocron.NewTask(func(id uuid.UUID) {
			es.SweepShow(context.Background(), id)
		}, showID),
	); err != nil {
		es.log.ErrorWithContext(ctx, "failed to re-arm expiry job", err, map[string]interface{}{
			"show_id": showID.String(),
		})
		es.disarm(ctx, showID)
	}
}

// runSafetySweep periodically scans for stale holds missed by the job
// path. Loss of a one-time job delays a release by at most one
// interval, it never leaks a hold.
func (es *ExpirationScheduler) runSafetySweep(ctx context.Context) {
	ticker := time.NewTicker(es.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-es.cfg.HoldTTL)
			showIDs, err := es.repo.ListShowIDsWithStalePending(ctx, cutoff)
			if err != nil {
				es.log.ErrorWithContext(ctx, "safety sweep scan failed", err, nil)
				continue
			}
			for _, showID := range showIDs {
				es.SweepShow(ctx, showID)
			}

			// Bookings left PENDING past the TTL lost their holds to a
			// sweep and will never see a payment; close them out.
			if es.bookingExpirer != nil {
				expired, err := es.bookingExpirer.ExpireStalePendingBookings(ctx, cutoff)
				if err != nil {
					es.log.ErrorWithContext(ctx, "failed to expire stale bookings", err, nil)
				} else if expired > 0 {
					es.log.Info("expired stale pending bookings", slog.Int64("count", expired))
				}
			}
		}
	}
}
