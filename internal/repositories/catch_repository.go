package repositories

import (
	"errors"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"gorm.io/gorm"
)

// CatchRepository defines the interface for catch and spot data operations
type CatchRepository interface {
	CreateCatch(c *models.Catch) error
	GetCatchesByUser(userID string) ([]models.Catch, error)
	GetRecentCatches(userID string, limit int) ([]models.Catch, error)
	// GetCatchesAtUserSpots returns every catch, by anyone, in the
	// territories userID has fished. Crowns and territory rule are derived
	// from it.
	GetCatchesAtUserSpots(userID string) ([]models.Catch, error)
	CreateSpot(s *models.Spot) error
	GetSpot(id string) (*models.Spot, error)
	GetSpotsByIDs(ids []string) (map[string]models.Spot, error)
	ListSpots(territory string) ([]models.Spot, error)
}

// PostgresCatchRepository implements CatchRepository for PostgreSQL
type PostgresCatchRepository struct {
	db *gorm.DB
}

func NewPostgresCatchRepository(db *gorm.DB) *PostgresCatchRepository {
	return &PostgresCatchRepository{db: db}
}

func (r *PostgresCatchRepository) CreateCatch(c *models.Catch) error {
	return r.db.Create(c).Error
}

func (r *PostgresCatchRepository) GetCatchesByUser(userID string) ([]models.Catch, error) {
	catches := []models.Catch{}
	err := r.db.Where("user_id = ?", userID).Find(&catches).Error
	return catches, err
}

func (r *PostgresCatchRepository) GetRecentCatches(userID string, limit int) ([]models.Catch, error) {
	catches := []models.Catch{}
	err := r.db.Where("user_id = ?", userID).Order("caught_at DESC").Limit(limit).Find(&catches).Error
	return catches, err
}

func (r *PostgresCatchRepository) GetCatchesAtUserSpots(userID string) ([]models.Catch, error) {
	territories := r.db.Table("spots").
		Select("DISTINCT spots.territory").
		Joins("JOIN catches ON catches.spot_id = spots.id").
		Where("catches.user_id = ?", userID)
	spotIDs := r.db.Table("spots").Select("id").Where("territory IN (?)", territories)

	catches := []models.Catch{}
	err := r.db.Where("spot_id IN (?)", spotIDs).Find(&catches).Error
	return catches, err
}

func (r *PostgresCatchRepository) CreateSpot(s *models.Spot) error {
	return r.db.Create(s).Error
}

func (r *PostgresCatchRepository) GetSpot(id string) (*models.Spot, error) {
	var spot models.Spot
	if err := r.db.Where("id = ?", id).First(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("spots.get", "Spot not found")
		}
		return nil, err
	}
	return &spot, nil
}

func (r *PostgresCatchRepository) GetSpotsByIDs(ids []string) (map[string]models.Spot, error) {
	result := make(map[string]models.Spot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var spots []models.Spot
	if err := r.db.Where("id IN ?", ids).Find(&spots).Error; err != nil {
		return nil, err
	}
	for _, s := range spots {
		result[s.ID] = s
	}
	return result, nil
}

func (r *PostgresCatchRepository) ListSpots(territory string) ([]models.Spot, error) {
	spots := []models.Spot{}
	q := r.db.Order("name ASC")
	if territory != "" {
		q = q.Where("territory = ?", territory)
	}
	err := q.Find(&spots).Error
	return spots, err
}
