// Package di contains dependency injection tokens for the gateway context.
package di

import (
	"github.com/fd1az/balancer-connector/business/gateway/api"
	"github.com/fd1az/balancer-connector/internal/di"
)

var (
	Server = di.NewToken[*api.Server]("gateway.Server")
)

// GetServer resolves the HTTP gateway.
func GetServer(c di.ServiceRegistry) *api.Server {
	return di.GetToken(c, Server)
}
