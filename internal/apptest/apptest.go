// Package apptest runs the full application in-process for tests of
// packages that talk to it over HTTP.
package apptest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BaseURL is the address clients should use with Server.Transport.
const BaseURL = "http://storefront.test"

// Server is an application instance over a private in-memory database.
type Server struct {
	App   *fiber.App
	Repos repositories.Set
}

// New starts a Server for t.
func New(t *testing.T) *Server {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "test_jwt_secret")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	repos := repositories.NewGORMSet(db)
	return &Server{App: app.New(cfg, repos, nil, zap.NewNop()), Repos: repos}
}

// Transport routes requests straight into the app without a listener.
func (s *Server) Transport() http.RoundTripper {
	return roundTripper{app: s.App}
}

// Promote sets role flags on the user with email.
func (s *Server) Promote(t *testing.T, email string, admin, seller bool) {
	t.Helper()
	ctx := context.Background()
	user, err := s.Repos.Users.GetByEmail(ctx, email)
	require.NoError(t, err)
	user.IsAdmin = admin
	user.IsSeller = seller
	require.NoError(t, s.Repos.Users.Update(ctx, user))
}

type roundTripper struct {
	app *fiber.App
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.app.Test(req, -1)
}
