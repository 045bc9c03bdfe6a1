// Package di contains dependency injection tokens for the chain context.
package di

import (
	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ChainService = di.NewToken[*app.ChainService]("chain.ChainService")
)

// GetChainService resolves the chain service.
func GetChainService(c di.ServiceRegistry) *app.ChainService {
	return di.GetToken(c, ChainService)
}
