package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"todoList/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func weatherServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestClient_ResolveIcon(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expected    weather.Icon
		expectError error
	}{
		{
			name:     "clear sky maps to sun",
			status:   http.StatusOK,
			body:     `{"weather":[{"main":"Clear","description":"clear sky"}]}`,
			expected: "sun",
		},
		{
			name:     "unknown description falls back",
			status:   http.StatusOK,
			body:     `{"weather":[{"main":"Tornado","description":"tornado"}]}`,
			expected: weather.IconUnknown,
		},
		{
			name:     "match is case-sensitive",
			status:   http.StatusOK,
			body:     `{"weather":[{"main":"Clear","description":"Clear Sky"}]}`,
			expected: weather.IconUnknown,
		},
		{
			name:     "empty weather list",
			status:   http.StatusOK,
			body:     `{"weather":[]}`,
			expected: weather.IconUnknown,
		},
		{
			name:        "provider error status",
			status:      http.StatusUnauthorized,
			body:        `{"cod":401,"message":"Invalid API key"}`,
			expected:    weather.IconUnknown,
			expectError: weather.ErrBadStatus,
		},
		{
			name:        "malformed body",
			status:      http.StatusOK,
			body:        `not json`,
			expected:    weather.IconUnknown,
			expectError: weather.ErrBadStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, req := weatherServer(t, tt.status, tt.body)
			client := weather.NewClient(srv.URL, "secret", time.Second)

			icon, err := client.ResolveIcon(context.Background(), 37.5665, 126.978)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, icon)

			assert.Equal(t, "/weather", req.URL.Path)
			q := req.URL.Query()
			assert.Equal(t, "37.5665", q.Get("lat"))
			assert.Equal(t, "126.978", q.Get("lon"))
			assert.Equal(t, "secret", q.Get("appid"))
			assert.Equal(t, "metric", q.Get("units"))
		})
	}
}

func TestClient_ResolveIconByCity(t *testing.T) {
	srv, req := weatherServer(t, http.StatusOK, `{"weather":[{"main":"Clouds","description":"few clouds"}]}`)
	client := weather.NewClient(srv.URL+"/", "secret", time.Second)

	icon, err := client.ResolveIconByCity(context.Background(), "Seoul")
	require.NoError(t, err)
	assert.Equal(t, weather.Icon("cloud.sun"), icon)
	assert.Equal(t, "/weather", req.URL.Path)
	assert.Equal(t, "Seoul", req.URL.Query().Get("q"))
}

func TestClient_MissingAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := weather.NewClient(srv.URL, "", time.Second)
	icon, err := client.ResolveIcon(context.Background(), 0, 0)

	assert.ErrorIs(t, err, weather.ErrMissingAPIKey)
	assert.Equal(t, weather.IconUnknown, icon)
	assert.False(t, called)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := weather.NewClient(url, "secret", time.Second)
	_, err := client.ResolveIcon(context.Background(), 1, 2)
	assert.ErrorIs(t, err, weather.ErrNetwork)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := weather.NewClient(srv.URL, "secret", 50*time.Millisecond)
	_, err := client.ResolveIcon(context.Background(), 1, 2)
	assert.ErrorIs(t, err, weather.ErrNetwork)
}

func TestIconFor(t *testing.T) {
	icon, ok := weather.IconFor("clear sky")
	assert.True(t, ok)
	assert.Equal(t, weather.Icon("sun"), icon)

	icon, ok = weather.IconFor("tornado")
	assert.False(t, ok)
	assert.Equal(t, weather.IconUnknown, icon)
}

func TestStaticLocation(t *testing.T) {
	_, err := weather.StaticLocation{}.Location(context.Background())
	assert.ErrorIs(t, err, weather.ErrPermissionDenied)

	coords, err := weather.StaticLocation{
		Coords:  weather.Coordinates{Lat: 1.5, Lon: 2.5},
		Enabled: true,
	}.Location(context.Background())
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 1.5, Lon: 2.5}, coords)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveIcon(ctx context.Context, lat, lon float64) (weather.Icon, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(weather.Icon), args.Error(1)
}

func TestWidget_StartsUnknown(t *testing.T) {
	w := weather.NewWidget(new(MockResolver), weather.StaticLocation{})
	assert.Equal(t, weather.IconUnknown, w.Icon())
	assert.True(t, w.State().UpdatedAt.IsZero())
}

func TestWidget_Refresh(t *testing.T) {
	ctx := context.Background()
	resolver := new(MockResolver)
	resolver.On("ResolveIcon", mock.Anything, 10.0, 20.0).Return(weather.Icon("sun"), nil).Once()
	resolver.On("ResolveIcon", mock.Anything, 10.0, 20.0).Return(weather.IconUnknown, weather.ErrNetwork).Once()

	w := weather.NewWidget(resolver, weather.StaticLocation{
		Coords:  weather.Coordinates{Lat: 10, Lon: 20},
		Enabled: true,
	})

	require.NoError(t, w.Refresh(ctx, w.Begin(), nil))
	assert.Equal(t, weather.Icon("sun"), w.Icon())
	assert.False(t, w.State().UpdatedAt.IsZero())

	// при ошибке значок не меняется
	err := w.Refresh(ctx, w.Begin(), nil)
	assert.ErrorIs(t, err, weather.ErrNetwork)
	assert.Equal(t, weather.Icon("sun"), w.Icon())

	resolver.AssertExpectations(t)
}

func TestWidget_RefreshWithExplicitCoordinates(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ResolveIcon", mock.Anything, 1.0, 2.0).Return(weather.Icon("snowflake"), nil)

	w := weather.NewWidget(resolver, nil)
	require.NoError(t, w.Refresh(context.Background(), w.Begin(), &weather.Coordinates{Lat: 1, Lon: 2}))
	assert.Equal(t, weather.Icon("snowflake"), w.Icon())
}

func TestWidget_PermissionDenied(t *testing.T) {
	resolver := new(MockResolver)
	w := weather.NewWidget(resolver, weather.StaticLocation{})

	err := w.Refresh(context.Background(), w.Begin(), nil)
	assert.ErrorIs(t, err, weather.ErrPermissionDenied)
	assert.Equal(t, weather.IconUnknown, w.Icon())
	resolver.AssertNotCalled(t, "ResolveIcon", mock.Anything, mock.Anything, mock.Anything)
}

func TestWidget_DropsStaleResults(t *testing.T) {
	w := weather.NewWidget(new(MockResolver), nil)

	older := w.Begin()
	newer := w.Begin()

	assert.True(t, w.Apply(newer, "cloud.rain"))
	assert.False(t, w.Apply(older, "sun"))
	assert.Equal(t, weather.Icon("cloud.rain"), w.Icon())
}

func TestWidget_LocationError(t *testing.T) {
	w := weather.NewWidget(new(MockResolver), failingLocation{})
	err := w.Refresh(context.Background(), w.Begin(), nil)
	assert.Error(t, err)
	assert.Equal(t, weather.IconUnknown, w.Icon())
}

type failingLocation struct{}

func (failingLocation) Location(context.Context) (weather.Coordinates, error) {
	return weather.Coordinates{}, errors.New("gps offline")
}
