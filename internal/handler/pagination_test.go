package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing falls back to default", query: "", want: 50},
		{name: "valid value passes through", query: "limit=10", want: 10},
		{name: "zero falls back to default", query: "limit=0", want: 50},
		{name: "negative falls back to default", query: "limit=-5", want: 50},
		{name: "over the cap falls back to default", query: "limit=1000", want: 50},
		{name: "garbage falls back to default", query: "limit=abc", want: 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/matches/history?"+tc.query, nil)
			assert.Equal(t, tc.want, ParseLimit(req))
		})
	}
}
