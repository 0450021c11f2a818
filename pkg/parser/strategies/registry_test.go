package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/jstd/pkg/domain"
)

type stubStrategy struct {
	name      string
	priority  int
	canHandle bool
	langs     []domain.Language
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Priority() int {
	if s.priority == 0 {
		return DefaultPriority
	}
	return s.priority
}

func (s *stubStrategy) Languages() []domain.Language { return s.langs }

func (s *stubStrategy) CanHandle(string, []byte) bool { return s.canHandle }

func (s *stubStrategy) Parse(context.Context, []byte, string) (*domain.TestFile, error) {
	return &domain.TestFile{Framework: s.name}, nil
}

func names(ss []Strategy) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Name())
	}
	return out
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("should keep registration order for equal priority", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register(&stubStrategy{name: "first"}))
		require.NoError(t, r.Register(&stubStrategy{name: "second"}))

		assert.Equal(t, []string{"first", "second"}, names(r.Strategies()))
	})

	t.Run("should sort by priority descending", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register(&stubStrategy{name: "low", priority: 50}))
		require.NoError(t, r.Register(&stubStrategy{name: "high", priority: 150}))
		require.NoError(t, r.Register(&stubStrategy{name: "default"}))

		assert.Equal(t, []string{"high", "default", "low"}, names(r.Strategies()))
	})

	t.Run("should reject duplicate names", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register(&stubStrategy{name: "jstestdriver"}))

		err := r.Register(&stubStrategy{name: "jstestdriver", priority: 200})

		require.ErrorIs(t, err, ErrDuplicateStrategy)
		assert.Len(t, r.Strategies(), 1)
	})
}

func TestRegistry_FindStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		strategies []*stubStrategy
		want       string
	}{
		{
			name: "should return matching strategy",
			strategies: []*stubStrategy{
				{name: "nomatch"},
				{name: "match", canHandle: true},
			},
			want: "match",
		},
		{
			name:       "should return nil when nothing matches",
			strategies: []*stubStrategy{{name: "nomatch"}},
		},
		{
			name: "should prefer higher priority",
			strategies: []*stubStrategy{
				{name: "low", priority: 50, canHandle: true},
				{name: "high", priority: 150, canHandle: true},
			},
			want: "high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRegistry()
			for _, s := range tt.strategies {
				require.NoError(t, r.Register(s))
			}

			found := r.FindStrategy("a_test.js", nil)

			if tt.want == "" {
				assert.Nil(t, found)
				return
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.want, found.Name())
		})
	}
}

func TestRegistry_FindByName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&stubStrategy{name: "jstestdriver"}))

	found := r.FindByName("jstestdriver")
	require.NotNil(t, found)
	assert.Equal(t, "jstestdriver", found.Name())

	assert.Nil(t, r.FindByName("unknown"))
}

func TestRegistry_Languages(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&stubStrategy{name: "a", langs: []domain.Language{domain.LanguageJavaScript}}))
	require.NoError(t, r.Register(&stubStrategy{name: "b", langs: []domain.Language{domain.LanguageJavaScript, domain.LanguageJSX}}))

	assert.Equal(t, []domain.Language{domain.LanguageJavaScript, domain.LanguageJSX}, r.Languages())
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&stubStrategy{name: "test"}))

	r.Clear()

	assert.Empty(t, r.Strategies())
	assert.Nil(t, r.FindByName("test"))
	require.NoError(t, r.Register(&stubStrategy{name: "test"}))
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	assert.Same(t, defaultRegistry, DefaultRegistry())
}
