package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The cookie value is an HS256 token binding the session id to the user it
// was issued for. Possession of a validly signed token is still not enough
// to authenticate: the referenced session row must exist.

func signToken(secret []byte, sessionID string, userID int64, username string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"sub": strconv.FormatInt(userID, 10),
		"usr": username,
		"iat": issuedAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parseToken(tokenString string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return "", err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims type")
	}

	sid, _ := mapClaims["sid"].(string)
	if sid == "" {
		return "", errors.New("missing sid claim")
	}

	return sid, nil
}
