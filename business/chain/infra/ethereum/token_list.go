package ethereum

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

// tokenListFile is the on-disk token list layout:
//
//	[[tokens]]
//	address  = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
//	symbol   = "WETH"
//	name     = "Wrapped Ether"
//	decimals = 18
type tokenListFile struct {
	Tokens []asset.TokenRecord `toml:"tokens"`
}

// LoadTokenList reads a TOML token list. Entries are validated when the
// registry is built, not here.
func LoadTokenList(path string) ([]asset.TokenRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("cannot read token list"),
			apperror.WithContext(path),
			apperror.WithCause(err))
	}
	return ParseTokenList(raw)
}

// ParseTokenList decodes a TOML token list.
func ParseTokenList(raw []byte) ([]asset.TokenRecord, error) {
	var file tokenListFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage(fmt.Sprintf("invalid token list: %v", err)),
			apperror.WithCause(err))
	}
	if len(file.Tokens) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("token list is empty"))
	}
	return file.Tokens, nil
}
