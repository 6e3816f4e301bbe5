package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tigerapp/oficina-api/internal/auth"
)

func TestSignInThrottle(t *testing.T) {
	throttle := auth.NewSignInThrottle(2, 2)

	assert.False(t, throttle.Blocked("carlos@oficina.test"))
	throttle.Failure("carlos@oficina.test")
	assert.False(t, throttle.Blocked("carlos@oficina.test"))
	throttle.Failure("Carlos@Oficina.test ")
	assert.True(t, throttle.Blocked("carlos@oficina.test"))

	// other addresses keep their own budget
	assert.False(t, throttle.Blocked("ana@oficina.test"))

	// recently seen addresses survive a sweep
	throttle.Sweep()
	assert.True(t, throttle.Blocked("carlos@oficina.test"))
}

func TestSignInThrottle_Defaults(t *testing.T) {
	throttle := auth.NewSignInThrottle(0, 0)
	for i := 0; i < 4; i++ {
		throttle.Failure("x@oficina.test")
	}
	assert.False(t, throttle.Blocked("x@oficina.test"))
	throttle.Failure("x@oficina.test")
	assert.True(t, throttle.Blocked("x@oficina.test"))
}
