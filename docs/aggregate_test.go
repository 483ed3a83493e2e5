package docs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawMethod(name string, verb HTTPMethod, mapping string, params ...FieldInfo) MethodInfo {
	return MethodInfo{
		Name:                name,
		HTTPMethod:          verb,
		ReturnTypeSignature: STRING,
		Parameters:          params,
		Endpoints:           []EndpointInfo{NewEndpointInfo("*", mapping, "application/json")},
	}
}

func TestAggregate(t *testing.T) {
	t.Run("same name and verb unions endpoints", func(t *testing.T) {
		got, err := Aggregate("svc", []MethodInfo{
			rawMethod("hello", MethodGet, "exact:/a"),
			rawMethod("hello", MethodGet, "exact:/b"),
			rawMethod("hello", MethodGet, "exact:/a"),
		}, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Len(t, got[0].Endpoints, 2)
	})

	t.Run("different verbs stay separate", func(t *testing.T) {
		got, err := Aggregate("svc", []MethodInfo{
			rawMethod("hello", MethodGet, "exact:/a"),
			rawMethod("hello", MethodPost, "exact:/a"),
		}, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, MethodGet, got[0].HTTPMethod)
		assert.Equal(t, MethodPost, got[1].HTTPMethod)
	})

	t.Run("any expands without connect and unknown", func(t *testing.T) {
		got, err := Aggregate("svc", []MethodInfo{rawMethod("all", MethodAny, "exact:/all")}, nil)
		require.NoError(t, err)

		verbs := make([]HTTPMethod, 0, len(got))
		for _, m := range got {
			verbs = append(verbs, m.HTTPMethod)
		}
		assert.Equal(t, []HTTPMethod{
			MethodOptions, MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodTrace,
		}, verbs)
	})

	t.Run("excluded set is configurable", func(t *testing.T) {
		got, err := Aggregate("svc", []MethodInfo{rawMethod("all", MethodAny, "exact:/all")}, []HTTPMethod{})
		require.NoError(t, err)
		assert.Len(t, got, len(HTTPMethods))

		got, err = Aggregate("svc", []MethodInfo{rawMethod("all", MethodAny, "exact:/all")},
			[]HTTPMethod{MethodConnect, MethodUnknown, MethodTrace, MethodOptions})
		require.NoError(t, err)
		assert.Len(t, got, 6)
	})

	t.Run("any merges with explicit binding", func(t *testing.T) {
		got, err := Aggregate("svc", []MethodInfo{
			rawMethod("m", MethodGet, "exact:/get"),
			rawMethod("m", MethodAny, "exact:/any"),
		}, nil)
		require.NoError(t, err)
		require.Len(t, got, 8)
		assert.Equal(t, MethodGet, got[0].HTTPMethod)
		assert.Len(t, got[0].Endpoints, 2)
	})

	t.Run("parameter mismatch is a conflict", func(t *testing.T) {
		_, err := Aggregate("svc", []MethodInfo{
			rawMethod("m", MethodGet, "exact:/a", NewFieldInfo("q", STRING, LocationQuery, RequirementRequired)),
			rawMethod("m", MethodGet, "exact:/b", NewFieldInfo("q", INT, LocationQuery, RequirementRequired)),
		}, nil)

		var conflict *MethodConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, MethodKey{Name: "m", HTTPMethod: MethodGet}, conflict.Key)
		assert.Equal(t, "svc", conflict.Service)
	})

	t.Run("return type mismatch is a conflict", func(t *testing.T) {
		other := rawMethod("m", MethodGet, "exact:/b")
		other.ReturnTypeSignature = LONG
		_, err := Aggregate("svc", []MethodInfo{rawMethod("m", MethodGet, "exact:/a"), other}, nil)

		var conflict *MethodConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Contains(t, conflict.Error(), "return types")
	})

	t.Run("input is not mutated", func(t *testing.T) {
		raw := []MethodInfo{
			rawMethod("m", MethodGet, "exact:/a"),
			rawMethod("m", MethodGet, "exact:/b"),
		}
		_, err := Aggregate("svc", raw, nil)
		require.NoError(t, err)
		assert.Len(t, raw[0].Endpoints, 1)
	})
}
