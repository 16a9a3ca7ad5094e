package inventory

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/saltyorg/partsroom/internal/database"
)

// IconCatalog answers whether a store icon is available
type IconCatalog interface {
	Exists(name string) bool
}

// Texter delivers one SMS. delivered is true only when the gateway
// answered 200.
type Texter interface {
	SendText(ctx context.Context, phone, text string) (delivered bool, err error)
}

// Publisher receives change events for live clients
type Publisher interface {
	Publish(kind string, data any)
}

// Event kinds
const (
	EventPartChanged  = "part_changed"
	EventStoreChanged = "store_changed"
	EventTypeChanged  = "type_changed"
	EventJobRecorded  = "job_recorded"
	EventAccount      = "account_changed"
	EventLowStockText = "low_stock_text"
)

// Service is the inventory data-access layer
type Service struct {
	db       *database.DB
	icons    IconCatalog
	texter   Texter
	validate *validator.Validate

	mu     sync.RWMutex
	events Publisher
}

// NewService creates a new inventory service. texter may be nil when SMS is
// not configured.
func NewService(db *database.DB, icons IconCatalog, texter Texter) *Service {
	return &Service{
		db:       db,
		icons:    icons,
		texter:   texter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SetPublisher sets the event sink for change notifications
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = p
}

func (s *Service) publish(kind string, data any) {
	s.mu.RLock()
	p := s.events
	s.mu.RUnlock()
	if p != nil {
		p.Publish(kind, data)
	}
}

func (s *Service) iconExists(name string) bool {
	return s.icons != nil && s.icons.Exists(name)
}
