package enquiry

import (
	"context"
	"errors"

	"github.com/nkoudou/veltrabackend/models"
)

var ErrNotFound = errors.New("trade enquiry not found")

// ListFilter mirrors the admin listing query string.
type ListFilter struct {
	Page   int
	Limit  int
	Status string
	Email  string
	Query  string
}

// Repository is the durable store for trade enquiry records. The pipeline
// only ever calls Insert, best-effort; the rest serves the admin surface.
type Repository interface {
	Insert(ctx context.Context, rec *models.TradeEnquiry) error
	List(ctx context.Context, f ListFilter) ([]models.TradeEnquiry, int64, error)
	Get(ctx context.Context, id string) (*models.TradeEnquiry, error)
	UpdateStatus(ctx context.Context, id string, status models.TradeEnquiryStatus) error
}
