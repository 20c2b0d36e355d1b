package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job schedules
const (
	OTPSweepSchedule        = "@every 15m"
	PaymentReminderSchedule = "0 9 * * *"
)

// ReminderWindow is how far ahead unpaid confirmed bookings get a reminder
const ReminderWindow = 24 * time.Hour

// Locker makes sure a job runs on one instance at a time
type Locker interface {
	TryAcquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, owner string) error
}

// OTPSweeper removes expired verification codes
type OTPSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// PaymentReminder emails customers whose confirmed booking is still unpaid
type PaymentReminder interface {
	SendPaymentReminders(ctx context.Context, window time.Duration) (int, error)
}

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	otp        OTPSweeper
	reminders  PaymentReminder
	locker     Locker
	instanceID string
	log        *zap.SugaredLogger
	observe    func(job string, err error)
}

// NewScheduler creates a new scheduler instance. observe may be nil.
func NewScheduler(otp OTPSweeper, reminders PaymentReminder, locker Locker, log *zap.SugaredLogger, observe func(string, error)) *Scheduler {
	// Heroku sets this to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}
	if locker == nil {
		locker = LocalLocker{}
	}
	if log == nil {
		log = zap.S()
	}
	if observe == nil {
		observe = func(string, error) {}
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		otp:        otp,
		reminders:  reminders,
		locker:     locker,
		instanceID: instanceID,
		log:        log,
		observe:    observe,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(OTPSweepSchedule, s.SweepOTPCodes); err != nil {
		return fmt.Errorf("failed to register otp sweep job: %w", err)
	}
	if _, err := s.cron.AddFunc(PaymentReminderSchedule, s.SendPaymentReminders); err != nil {
		return fmt.Errorf("failed to register payment reminder job: %w", err)
	}
	s.cron.Start()
	s.log.Infow("scheduler started", "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// SweepOTPCodes deletes expired verification codes
func (s *Scheduler) SweepOTPCodes() {
	s.runLocked("otp_sweep", 5*time.Minute, func(ctx context.Context) error {
		n, err := s.otp.SweepExpired(ctx)
		if err == nil && n > 0 {
			s.log.Infow("swept expired verification codes", "count", n)
		}
		return err
	})
}

// SendPaymentReminders emails customers with an unpaid booking starting soon
func (s *Scheduler) SendPaymentReminders() {
	s.runLocked("payment_reminders", 30*time.Minute, func(ctx context.Context) error {
		n, err := s.reminders.SendPaymentReminders(ctx, ReminderWindow)
		if err == nil {
			s.log.Infow("payment reminders sent", "count", n)
		}
		return err
	})
}

func (s *Scheduler) runLocked(job string, ttl time.Duration, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()

	acquired, err := s.locker.TryAcquire(ctx, job, s.instanceID, ttl)
	if err != nil {
		s.log.Errorw("failed to acquire scheduler lock", "job", job, "error", err)
		return
	}
	if !acquired {
		s.log.Debugw("job already running on another instance", "job", job)
		return
	}
	defer func() {
		if err := s.locker.Release(context.Background(), job, s.instanceID); err != nil {
			s.log.Warnw("failed to release scheduler lock", "job", job, "error", err)
		}
	}()

	err = fn(ctx)
	s.observe(job, err)
	if err != nil {
		s.log.Errorw("scheduled job failed", "job", job, "error", err)
	}
}

// LocalLocker always grants the lock, for single instance deployments
type LocalLocker struct{}

// TryAcquire always succeeds
func (LocalLocker) TryAcquire(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

// Release is a no-op
func (LocalLocker) Release(context.Context, string, string) error {
	return nil
}

const lockPrefix = "motorent:lock:"

// only the owner may delete the lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds job locks as expiring redis keys
type RedisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker creates a RedisLocker
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

// TryAcquire sets the lock key if nobody holds it
func (l *RedisLocker) TryAcquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, lockPrefix+name, owner, ttl).Result()
}

// Release deletes the lock key when owner still holds it
func (l *RedisLocker) Release(ctx context.Context, name, owner string) error {
	return releaseScript.Run(ctx, l.rdb, []string{lockPrefix + name}, owner).Err()
}
