package instrument

import (
	"errors"
	"sync"

	otelfiber "github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	fiberMu   sync.Mutex
	fiberApps = make(map[*fiber.App]struct{})
)

// FiberMiddleware returns an OTel middleware handler for mounting on any
// fiber app. excludedURLs is a comma-delimited list of regex patterns;
// matching request URLs are not traced.
func FiberMiddleware(excludedURLs string) (fiber.Handler, error) {
	patterns, err := compileExclusions(excludedURLs)
	if err != nil {
		return nil, err
	}

	var opts []otelfiber.Option
	if len(patterns) > 0 {
		opts = append(opts, otelfiber.WithNext(func(c *fiber.Ctx) bool {
			url := c.OriginalURL()
			for _, pattern := range patterns {
				if pattern.MatchString(url) {
					return true
				}
			}
			return false
		}))
	}
	return otelfiber.Middleware(opts...), nil
}

// FiberApp instruments one specific fiber app. Instrumenting the same app
// twice is a no-op, so handler chains never carry the middleware twice.
func FiberApp(app *fiber.App, excludedURLs string) error {
	if app == nil {
		return errors.New("fiber app is nil; use FiberMiddleware for manual mounting")
	}

	fiberMu.Lock()
	defer fiberMu.Unlock()

	if _, ok := fiberApps[app]; ok {
		return nil
	}

	middleware, err := FiberMiddleware(excludedURLs)
	if err != nil {
		return err
	}
	app.Use(middleware)
	fiberApps[app] = struct{}{}
	return nil
}

// ResetFiber forgets which apps have been instrumented. Meant for test
// teardown; it does not remove middleware already mounted on an app.
func ResetFiber() {
	fiberMu.Lock()
	defer fiberMu.Unlock()
	fiberApps = make(map[*fiber.App]struct{})
}
