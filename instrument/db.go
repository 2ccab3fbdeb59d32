// Package instrument contains the on/off toggles that delegate to pre-built
// instrumentation packages: database drivers, the outbound HTTP client, the
// fiber web framework, and process runtime/host metrics. Every toggle is
// idempotent and reports which targets it affected.
package instrument

import (
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// SupportedDrivers is the closed set of database/sql driver names the
// Database toggle accepts.
var SupportedDrivers = []string{"pgx", "postgres"}

// UnsupportedDriverError reports a driver name outside SupportedDrivers.
type UnsupportedDriverError struct {
	Driver string
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported driver %q: supported drivers are %v", e.Driver, SupportedDrivers)
}

// MissingDriverError reports a supported driver whose backing package is not
// linked into the binary.
type MissingDriverError struct {
	Driver string
}

func (e *MissingDriverError) Error() string {
	return fmt.Sprintf(
		"database driver %q is not registered with database/sql; "+
			"import its package first (pgx: github.com/jackc/pgx/v5/stdlib, postgres: github.com/lib/pq)",
		e.Driver,
	)
}

var (
	dbMu      sync.Mutex
	dbWrapped = make(map[string]string)
)

// Database activates OTel instrumentation for the given database/sql
// drivers by registering an instrumented wrapper around each one. When
// enableCommenter is true, queries carry a SQL comment with the trace
// context (useful for pg_stat_statements correlation).
//
// All names are validated before anything is registered, so an unsupported
// name performs no side effect. Re-instrumenting an already wrapped driver
// is a no-op. database/sql has no driver unregistration, so there is no
// Uninstrument counterpart; use DriverName to look up the wrapped name for
// sql.Open.
func Database(drivers []string, enableCommenter bool) ([]string, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	for _, driver := range drivers {
		if !slices.Contains(SupportedDrivers, driver) {
			return nil, &UnsupportedDriverError{Driver: driver}
		}
	}

	registered := sql.Drivers()
	instrumented := make([]string, 0, len(drivers))
	for _, driver := range drivers {
		if _, ok := dbWrapped[driver]; ok {
			instrumented = append(instrumented, driver)
			continue
		}
		if !slices.Contains(registered, driver) {
			return instrumented, &MissingDriverError{Driver: driver}
		}

		wrapped, err := otelsql.Register(driver,
			otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
			otelsql.WithSQLCommenter(enableCommenter),
		)
		if err != nil {
			return instrumented, fmt.Errorf("failed to instrument driver %q: %w", driver, err)
		}
		dbWrapped[driver] = wrapped
		instrumented = append(instrumented, driver)
	}

	return instrumented, nil
}

// DriverName returns the instrumented driver name to pass to sql.Open, and
// whether the driver has been instrumented.
func DriverName(driver string) (string, bool) {
	dbMu.Lock()
	defer dbMu.Unlock()
	wrapped, ok := dbWrapped[driver]
	return wrapped, ok
}
