package location_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, l *location.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRepository) List(ctx context.Context, accountID uuid.UUID) ([]location.Location, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.Location), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*location.Location, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockRepository) RecordPing(ctx context.Context, p *location.Ping) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) ListPublic(ctx context.Context) ([]location.PublicTruck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.PublicTruck), args.Error(1)
}

func ptr(v float64) *float64 { return &v }

func truck(name, city string, lat, lng *float64) location.PublicTruck {
	return location.PublicTruck{
		Location: location.Location{Name: name, City: city, Latitude: lat, Longitude: lng, IsPublic: true, IsTruckLocation: true},
	}
}

func names(trucks []location.PublicTruck) []string {
	out := make([]string, 0, len(trucks))
	for _, t := range trucks {
		out = append(out, t.Name)
	}
	return out
}

func TestHaversineKm(t *testing.T) {
	// Paris to London is roughly 344 km.
	paris := location.Coords{Lat: 48.8566, Lng: 2.3522}
	london := location.Coords{Lat: 51.5074, Lng: -0.1278}

	assert.InDelta(t, 343.5, location.HaversineKm(paris, london), 1.0)
	assert.InDelta(t, 0, location.HaversineKm(paris, paris), 1e-9)
}

func TestRankTrucks(t *testing.T) {
	here := &location.Coords{Lat: 30.2672, Lng: -97.7431} // Austin

	trucks := []location.PublicTruck{
		truck("Zeta Tacos", "Austin", ptr(30.30), ptr(-97.70)),
		truck("Nowhere BBQ", "Austin", nil, nil),
		truck("alpha Pho", "Dallas", ptr(32.7767), ptr(-96.7970)),
		truck("Beta Burgers", "austin ", ptr(30.2672), ptr(-97.7431)),
	}

	tests := []struct {
		name   string
		coords *location.Coords
		city   string
		want   []string
	}{
		{name: "by_name_without_coords", city: "", want: []string{"alpha Pho", "Beta Burgers", "Nowhere BBQ", "Zeta Tacos"}},
		{name: "by_distance_unknown_last", coords: here, city: "all", want: []string{"Beta Burgers", "Zeta Tacos", "alpha Pho", "Nowhere BBQ"}},
		{name: "city_filter_case_insensitive", coords: here, city: "AUSTIN", want: []string{"Beta Burgers", "Zeta Tacos", "Nowhere BBQ"}},
		{name: "unknown_city", city: "Houston", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := location.RankTrucks(trucks, tt.coords, tt.city)
			assert.Equal(t, tt.want, names(got))
			for _, g := range got {
				if tt.coords == nil {
					assert.Nil(t, g.DistanceKm)
				}
			}
		})
	}
}

func TestService_RecordPing(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())
	locationID := uuid.Must(uuid.NewV4())

	t.Run("invalid_coordinates", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := location.NewService(mockRepo)

		_, err := svc.RecordPing(context.Background(), &location.Ping{AccountID: accountID, Latitude: 91, Longitude: 0})
		require.ErrorIs(t, err, location.ErrInvalidCoordinates)
		mockRepo.AssertNotCalled(t, "RecordPing", mock.Anything, mock.Anything)
	})

	t.Run("unknown_location", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := location.NewService(mockRepo)
		mockRepo.On("RecordPing", mock.Anything, mock.Anything).Return(location.ErrLocationNotFound).Once()

		_, err := svc.RecordPing(context.Background(), &location.Ping{AccountID: accountID, LocationID: &locationID, Latitude: 1, Longitude: 1})
		require.ErrorIs(t, err, location.ErrLocationNotFound)
	})

	t.Run("defaults_source_and_time", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := location.NewService(mockRepo)
		mockRepo.On("RecordPing", mock.Anything, mock.AnythingOfType("*location.Ping")).Return(nil).Once()

		p, err := svc.RecordPing(context.Background(), &location.Ping{AccountID: accountID, LocationID: &locationID, Latitude: 30.1, Longitude: -97.2})
		require.NoError(t, err)
		assert.Equal(t, location.SourceGPS, p.Source)
		assert.False(t, p.RecordedAt.IsZero())
		mockRepo.AssertExpectations(t)
	})
}

func TestService_ListPublicTrucks(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := location.NewService(mockRepo)

	mockRepo.On("ListPublic", mock.Anything).Return([]location.PublicTruck{
		truck("B", "Austin", ptr(30), ptr(-97)),
		truck("A", "Austin", ptr(31), ptr(-97)),
	}, nil).Once()

	got, err := svc.ListPublicTrucks(context.Background(), &location.Coords{Lat: 30, Lng: -97}, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Name)
	require.NotNil(t, got[1].DistanceKm)
	assert.InDelta(t, 111.2, *got[1].DistanceKm, 0.5)

	_, err = svc.ListPublicTrucks(context.Background(), &location.Coords{Lat: 0, Lng: 200}, "")
	require.ErrorIs(t, err, location.ErrInvalidCoordinates)
}

func TestService_CreateLocation(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		loc       location.Location
		wantErrIs error
	}{
		{name: "missing_name", loc: location.Location{AccountID: accountID, Name: " "}, wantErrIs: location.ErrInvalidLocation},
		{name: "half_coordinates", loc: location.Location{AccountID: accountID, Name: "Pier", Latitude: ptr(10)}, wantErrIs: location.ErrInvalidLocation},
		{name: "out_of_range", loc: location.Location{AccountID: accountID, Name: "Pier", Latitude: ptr(91), Longitude: ptr(0)}, wantErrIs: location.ErrInvalidCoordinates},
		{name: "success", loc: location.Location{AccountID: accountID, Name: " Pier 39 ", Latitude: ptr(37.8), Longitude: ptr(-122.4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			if tt.wantErrIs == nil {
				mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*location.Location")).Return(nil).Once()
			}

			loc := tt.loc
			got, err := location.NewService(mockRepo).CreateLocation(context.Background(), &loc)

			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Pier 39", got.Name)
			assert.NotEqual(t, uuid.Nil, got.ID)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_GetLocation(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := location.NewService(mockRepo)
		mockRepo.On("GetByID", mock.Anything, accountID, id).Return(&location.Location{ID: id, AccountID: accountID, Name: "Main truck"}, nil).Once()

		l, err := svc.GetLocation(context.Background(), accountID, id)

		require.NoError(t, err)
		assert.Equal(t, "Main truck", l.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("other account", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := location.NewService(mockRepo)
		mockRepo.On("GetByID", mock.Anything, accountID, id).Return(nil, location.ErrLocationNotFound).Once()

		_, err := svc.GetLocation(context.Background(), accountID, id)

		assert.ErrorIs(t, err, location.ErrLocationNotFound)
		mockRepo.AssertExpectations(t)
	})
}
