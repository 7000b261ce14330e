package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrInvalidLocation    = errors.New("invalid location")
)

const earthRadiusKm = 6371.0

type Service interface {
	CreateLocation(ctx context.Context, l *Location) (*Location, error)
	ListLocations(ctx context.Context, accountID uuid.UUID) ([]Location, error)
	GetLocation(ctx context.Context, accountID, id uuid.UUID) (*Location, error)
	RecordPing(ctx context.Context, p *Ping) (*Ping, error)
	ListPublicTrucks(ctx context.Context, coords *Coords, city string) ([]PublicTruck, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func (s *service) CreateLocation(ctx context.Context, l *Location) (*Location, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidLocation)
	}
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be set together", ErrInvalidLocation)
	}
	if l.Latitude != nil && !validCoords(*l.Latitude, *l.Longitude) {
		return nil, ErrInvalidCoordinates
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate location id: %w", err)
	}
	now := time.Now().UTC()
	l.ID = id
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.repo.Create(ctx, l); err != nil {
		log.Error().Err(err).Stringer("account_id", l.AccountID).Msg("service: failed to create location")
		return nil, fmt.Errorf("service: failed to create location: %w", err)
	}
	return l, nil
}

func (s *service) ListLocations(ctx context.Context, accountID uuid.UUID) ([]Location, error) {
	locations, err := s.repo.List(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list locations")
		return nil, fmt.Errorf("service: failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *service) GetLocation(ctx context.Context, accountID, id uuid.UUID) (*Location, error) {
	l, err := s.repo.GetByID(ctx, accountID, id)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			log.Warn().Stringer("account_id", accountID).Stringer("location_id", id).Msg("service: location not found")
			return nil, ErrLocationNotFound
		}
		log.Error().Err(err).Stringer("location_id", id).Msg("service: failed to get location")
		return nil, fmt.Errorf("service: failed to get location: %w", err)
	}
	return l, nil
}

func (s *service) RecordPing(ctx context.Context, p *Ping) (*Ping, error) {
	if !validCoords(p.Latitude, p.Longitude) {
		return nil, ErrInvalidCoordinates
	}
	if p.Source == "" {
		p.Source = SourceGPS
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate ping id: %w", err)
	}
	now := time.Now().UTC()
	p.ID = id
	if p.RecordedAt.IsZero() {
		p.RecordedAt = now
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.RecordPing(ctx, p); err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return nil, ErrLocationNotFound
		}
		log.Error().Err(err).Stringer("account_id", p.AccountID).Msg("service: failed to record location ping")
		return nil, fmt.Errorf("service: failed to record location ping: %w", err)
	}
	return p, nil
}

func (s *service) ListPublicTrucks(ctx context.Context, coords *Coords, city string) ([]PublicTruck, error) {
	if coords != nil && !validCoords(coords.Lat, coords.Lng) {
		return nil, ErrInvalidCoordinates
	}

	trucks, err := s.repo.ListPublic(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list public trucks")
		return nil, fmt.Errorf("service: failed to list public trucks: %w", err)
	}
	return RankTrucks(trucks, coords, city), nil
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b Coords) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RankTrucks filters by city and orders by distance from coords (unknown distances
// last), or by name when no coords are given. An empty or "all" city keeps everything.
func RankTrucks(trucks []PublicTruck, coords *Coords, city string) []PublicTruck {
	city = strings.TrimSpace(city)
	filterCity := city != "" && !strings.EqualFold(city, "all")

	result := make([]PublicTruck, 0, len(trucks))
	for _, t := range trucks {
		if filterCity && !strings.EqualFold(strings.TrimSpace(t.City), city) {
			continue
		}
		t.DistanceKm = nil
		if coords != nil && t.Latitude != nil && t.Longitude != nil {
			d := HaversineKm(*coords, Coords{Lat: *t.Latitude, Lng: *t.Longitude})
			t.DistanceKm = &d
		}
		result = append(result, t)
	}

	if coords == nil {
		sort.SliceStable(result, func(i, j int) bool {
			return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
		})
		return result
	}

	sort.SliceStable(result, func(i, j int) bool {
		di, dj := result[i].DistanceKm, result[j].DistanceKm
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return result
}
