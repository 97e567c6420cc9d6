package ports_test

import (
	"testing"

	mocks "github.com/openlms/anonauth/internal/mocks/auth"
	"github.com/openlms/anonauth/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.UserStore = (*mocks.MemoryUserStore)(nil)
	var _ ports.CohortStore = (*mocks.MemoryCohortStore)(nil)
	var _ ports.CourseStore = (*mocks.MemoryCourseStore)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.Notifier = (*mocks.RecordingNotifier)(nil)
	var _ ports.RoleAssigner = (*mocks.RecordingRoleAssigner)(nil)
}
