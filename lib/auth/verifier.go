package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAccountMismatch = errors.New("token account does not match")
	ErrCompanyMismatch = errors.New("token has no access to the configured company")

	bearerPrefix = regexp.MustCompile(`(?i)^bearer +`)
)

// FsmCompany is a company entry in an FSM access token
type FsmCompany struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name,omitempty"`
}

// FsmClaims are the claims of an FSM user access token. FSM tokens carry
// neither iss nor aud.
type FsmClaims struct {
	UserName          string       `json:"user_name"`
	User              string       `json:"user"`
	AccountID         json.Number  `json:"account_id"`
	PermissionGroupID json.Number  `json:"permission_group_id"`
	Companies         []FsmCompany `json:"companies"`
	jwt.RegisteredClaims
}

// JWTVerifier checks FSM access tokens for one account and company
type JWTVerifier struct {
	Keys      keyfunc.Keyfunc
	AccountID string
	CompanyID string
	parser    *jwt.Parser
}

// NewJWTVerifier creates a verifier accepting RS256 tokens signed by keys from the set
func NewJWTVerifier(keys keyfunc.Keyfunc, accountID, companyID string) *JWTVerifier {
	return &JWTVerifier{
		Keys:      keys,
		AccountID: accountID,
		CompanyID: companyID,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
	}
}

// Verify validates the signature and time claims of authorization (with or without
// the "Bearer " prefix) and checks the account and company claims.
func (v *JWTVerifier) Verify(ctx context.Context, authorization string) (*FsmClaims, error) {
	raw := bearerPrefix.ReplaceAllString(authorization, "")

	claims := &FsmClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, v.Keys.KeyfuncCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.AccountID.String() != v.AccountID {
		return nil, fmt.Errorf("%w: %s", ErrAccountMismatch, claims.AccountID)
	}
	for _, company := range claims.Companies {
		if company.ID.String() == v.CompanyID {
			return claims, nil
		}
	}
	return nil, ErrCompanyMismatch
}
