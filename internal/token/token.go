// Package token はBearer認証トークンの発行と検証を提供する。
// トークンはHMAC署名付きJWTで、サーバー側に状態を持たない。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は検証に失敗したトークンを表す。
// 形式不正・署名不一致・期限切れを区別せず、すべてこのエラーに集約する。
var ErrInvalidToken = errors.New("invalid token")

// signingMethod は許可する署名アルゴリズム。これ以外は拒否する。
var signingMethod = jwt.SigningMethodHS256

// Config はIssuerの設定。
type Config struct {
	Secret string        // HMAC署名鍵。ローテーションすると既発行トークンはすべて無効になる。
	TTL    time.Duration // 発行時に確定する有効期間
	Now    func() time.Time
}

// Issuer はトークンの発行と検証を行う。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer はIssuerを生成する。署名鍵が空の場合はエラーを返す。
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    now,
	}, nil
}

// Issue は指定ユーザーIDをsubjectとする署名付きトークンを発行する。
func (i *Issuer) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("token: subject id is required")
	}

	issuedAt := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、subjectのユーザーIDを返す。
// 失敗理由は外部に漏らさず、常にErrInvalidTokenを返す。
func (i *Issuer) Verify(credential string) (string, error) {
	if credential == "" {
		return "", ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
