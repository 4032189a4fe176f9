package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"food-order/logger"
	"food-order/models"
	"food-order/repositories"
	"food-order/utils"
)

type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int, hashedPassword string) error
	GetProfile(ctx context.Context, userID int) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
	GetUserWithProfile(ctx context.Context, userID int) (*models.UserWithProfile, error)
}

type PhotoStorage interface {
	Upload(ctx context.Context, file io.Reader, name string) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

type OTPSender interface {
	SendOTPEmail(ctx context.Context, toEmail, otp string, minutes int) error
}

const (
	roleCustomer = "customer"
	otpLength    = 6
	otpTTL       = 5 * time.Minute

	// A reset code is burned after this many wrong guesses.
	maxOTPAttempts = 5
)

type resetCode struct {
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var sessionKeys = []string{
	repositories.KeyUserName,
	repositories.KeyUserEmail,
	repositories.KeyUserPhone,
	repositories.KeyUserPhotoURL,
	repositories.KeyIsLoggedIn,
	repositories.KeySession,
}

type AuthService struct {
	users         UserStore
	tokens        *utils.TokenManager
	session       repositories.KeyValueStore
	ledger        *CartLedger
	photos        PhotoStorage
	mailer        OTPSender
	maxUploadSize int64
	log           *logger.Logger
	now           func() time.Time

	otpMu sync.Mutex
}

type AuthDeps struct {
	Users         UserStore
	Tokens        *utils.TokenManager
	Session       repositories.KeyValueStore
	Ledger        *CartLedger
	Photos        PhotoStorage
	Mailer        OTPSender
	MaxUploadSize int64
	Log           *logger.Logger
}

func NewAuthService(deps AuthDeps) *AuthService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{
		users:         deps.Users,
		tokens:        deps.Tokens,
		session:       deps.Session,
		ledger:        deps.Ledger,
		photos:        deps.Photos,
		mailer:        deps.Mailer,
		maxUploadSize: deps.MaxUploadSize,
		log:           log,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, models.PersistenceError(err, "failed to check email")
	}
	if exists {
		return nil, models.NewAppError(models.CodeConflict, "email already registered")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, models.WrapAppError(models.CodeInternal, err, "failed to hash password")
	}

	user := &models.User{
		Email:    email,
		Password: hashedPassword,
		Role:     roleCustomer,
	}
	profile := &models.UserProfile{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
	}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, models.PersistenceError(err, "failed to create user")
	}

	return s.issueSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, models.NewAppError(models.CodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load user")
	}

	valid, err := utils.VerifyPassword(user.Password, req.Password)
	if err != nil || !valid {
		return nil, models.NewAppError(models.CodeUnauthorized, "invalid email or password")
	}

	return s.issueSession(ctx, user)
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, models.WrapAppError(models.CodeInternal, err, "failed to issue token")
	}

	userWithProfile, err := s.users.GetUserWithProfile(ctx, user.ID)
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load profile")
	}

	if err := s.switchCartOwner(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.storeSession(ctx, userWithProfile); err != nil {
		s.log.Warn(ctx, "failed to persist session", err)
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *userWithProfile,
	}, nil
}

func (s *AuthService) storeSession(ctx context.Context, user *models.UserWithProfile) error {
	session := models.Session{
		UserID:   user.ID,
		Name:     user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		PhotoURL: user.PhotoURL,
	}

	values := map[string]any{
		repositories.KeyUserName:   session.Name,
		repositories.KeyUserEmail:  session.Email,
		repositories.KeyUserPhone:  session.Phone,
		repositories.KeyIsLoggedIn: true,
		repositories.KeySession:    session,
	}
	if session.PhotoURL != "" {
		values[repositories.KeyUserPhotoURL] = session.PhotoURL
	}

	var errs []error
	if session.PhotoURL == "" {
		if err := s.session.Remove(ctx, repositories.KeyUserPhotoURL); err != nil {
			errs = append(errs, err)
		}
	}
	for key, value := range values {
		if err := repositories.SetJSON(ctx, s.session, key, value, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// switchCartOwner empties the cart when a different user signs in on this
// device. The previous user's rows never carry over.
func (s *AuthService) switchCartOwner(ctx context.Context, userID int) error {
	if s.ledger == nil {
		return nil
	}

	var current models.Session
	err := repositories.GetJSON(ctx, s.session, repositories.KeySession, &current)
	switch {
	case errors.Is(err, repositories.ErrKeyNotFound):
		if s.ledger.IsEmpty() {
			return nil
		}
	case err != nil:
		return models.PersistenceError(err, "failed to load session")
	case current.UserID == userID:
		return nil
	}

	s.log.Info(ctx, "clearing cart left by previous session")
	return s.ledger.Clear(ctx)
}

// RequireSessionUser fails unless userID is the user signed in on this device.
func (s *AuthService) RequireSessionUser(ctx context.Context, userID int) error {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return models.NewAppError(models.CodeUnauthorized, "signed in as a different user on this device")
	}
	return nil
}

// CurrentSession returns the signed-in user persisted on this device.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	var session models.Session
	err := repositories.GetJSON(ctx, s.session, repositories.KeySession, &session)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return nil, models.NewAppError(models.CodeUnauthorized, "not signed in")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load session")
	}
	return &session, nil
}

// Logout empties the cart and forgets the device session.
func (s *AuthService) Logout(ctx context.Context) error {
	var errs []error
	if s.ledger != nil {
		if err := s.ledger.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, key := range sessionKeys {
		if err := s.session.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return models.PersistenceError(err, "failed to clear session")
	}
	return nil
}

func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.EmailExists(ctx, normalizeEmail(email))
	if err != nil {
		return false, models.PersistenceError(err, "failed to check email")
	}
	return exists, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int) (*models.UserWithProfile, error) {
	user, err := s.users.GetUserWithProfile(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, models.NotFoundError("user not found")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load profile")
	}

	if err := s.storeSession(ctx, user); err != nil {
		s.log.Warn(ctx, "failed to refresh session", err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int, req models.UpdateProfileRequest) (*models.UserWithProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		profile.FullName = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		profile.Phone = phone
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		profile.Address = address
	}

	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, models.PersistenceError(err, "failed to update profile")
	}
	return s.GetProfile(ctx, userID)
}

// UpdateProfilePhoto uploads a new photo and removes the previous one.
func (s *AuthService) UpdateProfilePhoto(ctx context.Context, userID int, fileHeader *multipart.FileHeader) (*models.UserWithProfile, error) {
	if s.photos == nil {
		return nil, models.NewAppError(models.CodeDependency, "photo storage is not configured")
	}
	if err := utils.ValidateImageFile(fileHeader, s.maxUploadSize); err != nil {
		return nil, models.ValidationError(err.Error())
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, models.ValidationError("failed to read uploaded file")
	}
	defer file.Close()

	url, publicID, err := s.photos.Upload(ctx, file, utils.PhotoName(userID, fileHeader.Filename))
	if err != nil {
		return nil, models.WrapAppError(models.CodeDependency, err, "failed to upload photo")
	}

	oldPublicID := profile.PhotoPublicID
	profile.PhotoURL = url
	profile.PhotoPublicID = publicID
	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		if delErr := s.photos.Delete(ctx, publicID); delErr != nil {
			s.log.Warn(ctx, "failed to roll back uploaded photo", delErr)
		}
		return nil, models.PersistenceError(err, "failed to update profile")
	}

	if oldPublicID != "" && oldPublicID != publicID {
		if err := s.photos.Delete(ctx, oldPublicID); err != nil {
			s.log.Warn(ctx, "failed to delete previous photo", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *AuthService) loadProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, models.NotFoundError("profile not found")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load profile")
	}
	return profile, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int, req models.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.NotFoundError("user not found")
	}
	if err != nil {
		return models.PersistenceError(err, "failed to load user")
	}

	valid, err := utils.VerifyPassword(user.Password, req.OldPassword)
	if err != nil || !valid {
		return models.ValidationError("invalid old password")
	}

	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID int, password string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return models.WrapAppError(models.CodeInternal, err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return models.PersistenceError(err, "failed to update password")
	}
	return nil
}

func otpKey(email string) string {
	return repositories.KeyPasswordResetOTP + ":" + email
}

// ForgotPassword emails a six digit code valid for five minutes.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return models.PersistenceError(err, "failed to check email")
	}
	if !exists {
		return models.NotFoundError("there is no user record corresponding to this email")
	}
	if s.mailer == nil {
		return models.NewAppError(models.CodeDependency, "email delivery is not configured")
	}

	otp, err := generateOTP(otpLength)
	if err != nil {
		return models.WrapAppError(models.CodeInternal, err, "failed to generate code")
	}
	code := resetCode{Code: otp, ExpiresAt: s.now().Add(otpTTL)}
	if err := repositories.SetJSON(ctx, s.session, otpKey(email), code, otpTTL); err != nil {
		return models.PersistenceError(err, "failed to store reset code")
	}

	if err := s.mailer.SendOTPEmail(ctx, email, otp, int(otpTTL.Minutes())); err != nil {
		_ = s.session.Remove(ctx, otpKey(email))
		return models.WrapAppError(models.CodeDependency, err, "failed to send reset code")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)

	if err := s.checkResetCode(ctx, email, req.OTP); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.NotFoundError("user not found")
	}
	if err != nil {
		return models.PersistenceError(err, "failed to load user")
	}

	if err := s.setPassword(ctx, user.ID, req.NewPassword); err != nil {
		return err
	}
	if err := s.session.Remove(ctx, otpKey(email)); err != nil {
		s.log.Warn(ctx, "failed to remove used reset code", err)
	}
	return nil
}

// checkResetCode counts every wrong guess against the stored code and
// deletes it once maxOTPAttempts is reached.
func (s *AuthService) checkResetCode(ctx context.Context, email, otp string) error {
	s.otpMu.Lock()
	defer s.otpMu.Unlock()

	invalid := models.ValidationError("invalid or expired code")
	key := otpKey(email)

	var code resetCode
	err := repositories.GetJSON(ctx, s.session, key, &code)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return invalid
	}
	if err != nil {
		return models.PersistenceError(err, "failed to load reset code")
	}

	remaining := code.ExpiresAt.Sub(s.now())
	if remaining <= 0 || code.Attempts >= maxOTPAttempts {
		if err := s.session.Remove(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to remove reset code", err)
		}
		return invalid
	}
	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(otp)) == 1 {
		return nil
	}

	code.Attempts++
	if code.Attempts >= maxOTPAttempts {
		err = s.session.Remove(ctx, key)
	} else {
		err = repositories.SetJSON(ctx, s.session, key, code, remaining)
	}
	if err != nil {
		return models.PersistenceError(err, "failed to record reset attempt")
	}
	return invalid
}

func generateOTP(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
