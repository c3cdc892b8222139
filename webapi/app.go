// Package webapi assembles the fiber application from the route packages.
package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kreso2/costwise/pkg/service/advisor"
	"github.com/kreso2/costwise/pkg/service/estimation"
	"github.com/kreso2/costwise/pkg/service/exchange"
	"github.com/kreso2/costwise/webapi/common"
	currencyapi "github.com/kreso2/costwise/webapi/currency"
	projectapi "github.com/kreso2/costwise/webapi/project"
)

// Services carries the wired services the routes depend on.
type Services struct {
	Estimation *estimation.Service
	Advisor    *advisor.Service
	Exchange   *exchange.Service
}

// Options tunes the outer middleware.
type Options struct {
	// RateLimit is the allowed requests per second per client IP.
	// Zero disables the limiter.
	RateLimit int
}

// NewApp builds the fiber application with all routes registered.
func NewApp(svcs Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return common.ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Second,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests,
					"Too Many Requests", "Rate limit exceeded")
			},
		}))
	}
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("App is working! 🚀")
	})

	projectapi.Routes(app, svcs.Estimation, svcs.Advisor)
	currencyapi.Routes(app, svcs.Exchange)

	return app
}
