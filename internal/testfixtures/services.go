package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/meeting-service/internal/application"
	"github.com/example/meeting-service/internal/notify"
	"github.com/example/meeting-service/internal/persistence"
	"github.com/example/meeting-service/internal/recurrence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// MeetingServiceDeps captures dependencies for constructing a meeting service.
type MeetingServiceDeps struct {
	Meetings    persistence.MeetingRepository
	Tasks       persistence.TaskRepository
	Recurrences persistence.RecurrenceRepository
	Users       persistence.UserRepository
	Engine      *recurrence.Engine
	Notifier    notify.Notifier
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewMeetingService builds a meeting service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewMeetingService(deps MeetingServiceDeps) *application.MeetingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewMeetingService(
		deps.Meetings,
		deps.Tasks,
		deps.Recurrences,
		deps.Users,
		deps.Engine,
		deps.Notifier,
		idGen,
		now,
		deps.Logger,
	)
}

// TaskServiceDeps captures dependencies for constructing a task service.
type TaskServiceDeps struct {
	Tasks       persistence.TaskRepository
	Meetings    persistence.MeetingRepository
	Users       persistence.UserRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTaskService builds a task service using the supplied dependencies.
func (f *ServiceFactory) NewTaskService(deps TaskServiceDeps) *application.TaskService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTaskService(
		deps.Tasks,
		deps.Meetings,
		deps.Users,
		idGen,
		now,
		deps.Logger,
	)
}

// RecurrenceServiceDeps captures dependencies for constructing a recurrence
// service.
type RecurrenceServiceDeps struct {
	Recurrences persistence.RecurrenceRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRecurrenceService builds a recurrence service using the supplied
// dependencies.
func (f *ServiceFactory) NewRecurrenceService(deps RecurrenceServiceDeps) *application.RecurrenceService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRecurrenceService(
		deps.Recurrences,
		idGen,
		now,
		deps.Logger,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       persistence.UserRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewUserService(
		deps.Users,
		idGen,
		now,
		deps.Logger,
	)
}
