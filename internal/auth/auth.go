package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/stickclash/stickclash-backend/config"
	"github.com/stickclash/stickclash-backend/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const tokenExpiry = 24 * time.Hour

type Service struct {
	db  *sql.DB
	cfg config.Config
}

func NewService(conn *sql.DB, cfg config.Config) *Service {
	return &Service{
		db:  conn,
		cfg: cfg,
	}
}

// Identity is the user identity carried inside a session token.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

func (s *Service) Register(username, password string) (db.User, string, error) {
	if len(username) < 3 {
		return db.User{}, "", fmt.Errorf("username must be at least 3 characters")
	}
	if len(password) < 6 {
		return db.User{}, "", fmt.Errorf("password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return db.User{}, "", err
	}

	userID := uuid.New()
	query := `INSERT INTO users (id, username, password, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, created_at`
	var user db.User
	err = s.db.QueryRow(query, userID, username, string(hashed), time.Now()).
		Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return db.User{}, "", ErrUsernameTaken
		}
		return db.User{}, "", err
	}

	token, err := s.issueToken(user.ID, user.Username)
	if err != nil {
		return db.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) Login(username, password string) (db.User, string, error) {
	var user db.User
	err := s.db.QueryRow(`
		SELECT id, username, password, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if err != nil {
		return db.User{}, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return db.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID, user.Username)
	if err != nil {
		return db.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) issueToken(userID uuid.UUID, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID.String(),
		"username": username,
		"exp":      time.Now().Add(tokenExpiry).Unix(),
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken validates a session token and returns the identity it carries.
// Used by both the HTTP middleware and the realtime gateway at connect time.
func (s *Service) VerifyToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	rawID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil || username == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Username: username}, nil
}
