package repositorycache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "User", want: "user"},
		{in: "TestUser", want: "test_user"},
		{in: "HTTPRequest", want: "http_request"},
		{in: "UserV2", want: "user_v_2"},
		{in: "OAuth2Token", want: "o_auth_2_token"},
		{in: "already_snake", want: "already_snake"},
		{in: "kebab-case name", want: "kebab_case_name"},
		{in: "Page[github.com/acme/models.User]", want: "page"},
		{in: "models.Account", want: "account"},
		{in: "interface {}", want: "interface"},
		{in: "__Weird::Name__", want: "weird_name"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, toSnake(tt.in))
		})
	}
}
