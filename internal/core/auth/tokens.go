package auth

import "time"

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenService access/refresh 两套密钥，互不通用
type TokenService struct {
	Access  *JWTer
	Refresh *JWTer
}

func NewTokenService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = AccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = RefreshTokenTTL
	}
	return &TokenService{
		Access:  &JWTer{Secret: []byte(accessSecret), Issuer: issuer, TTL: accessTTL},
		Refresh: &JWTer{Secret: []byte(refreshSecret), Issuer: issuer, TTL: refreshTTL},
	}
}

func (s *TokenService) IssueAccessToken(userID, name string) (string, error) {
	tok, _, err := s.Access.Issue(userID, name)
	return tok, err
}

func (s *TokenService) IssueRefreshToken(userID, name string) (string, error) {
	tok, _, err := s.Refresh.Issue(userID, name)
	return tok, err
}

func (s *TokenService) VerifyAccess(tok string) (*Claims, error)  { return s.Access.Parse(tok) }
func (s *TokenService) VerifyRefresh(tok string) (*Claims, error) { return s.Refresh.Parse(tok) }
