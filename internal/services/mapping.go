package services

import (
	"fmt"

	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// MappingService resolves a driver profile to a college and shift
// timing. College and timing identity live apart from the mapping so
// many drivers can share the same rows, and a driver's assignment can
// be replaced by deleting the one-to-one mapping and re-resolving.
type MappingService struct {
	store storage.Store
}

func NewMappingService(store storage.Store) *MappingService {
	return &MappingService{store: store}
}

// MappingResult reports the outcome of a resolve. An already-existing
// mapping is a no-op success, not a conflict.
type MappingResult struct {
	Mapping *models.DriverCollegeMapping
	Created bool
	Message string
}

// ResolveAndMap looks up or creates the College, the CollegeTiming and
// the driver mapping in one storage transaction. All three steps
// succeed or none do.
func (s *MappingService) ResolveAndMap(driverID uint, collegeName, startShift, endShift string) (*MappingResult, error) {
	mapping, created, err := s.store.ResolveDriverMapping(driverID, collegeName, startShift, endShift)
	if err != nil {
		return nil, &MappingError{Err: err}
	}

	result := &MappingResult{Mapping: mapping, Created: created}
	if created {
		result.Message = fmt.Sprintf("Driver profile mapped to %s with shift %s - %s.", collegeName, startShift, endShift)
	} else {
		result.Message = "Driver profile mapping already exists."
	}
	return result, nil
}

// Reassign replaces a driver's existing mapping with a new
// college/timing resolution. The old row is deleted first so the
// one-mapping-per-driver invariant holds.
func (s *MappingService) Reassign(mappingID, driverID uint, collegeName, startShift, endShift string) (*MappingResult, error) {
	if err := s.store.DeleteDriverMapping(mappingID); err != nil {
		return nil, &MappingError{Err: err}
	}
	return s.ResolveAndMap(driverID, collegeName, startShift, endShift)
}
