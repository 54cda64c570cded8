package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/middlewares"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

const minPasswordLength = 8

type UserController struct {
	DB         *gorm.DB
	Tokens     *utils.TokenIssuer
	Orders     *repository.OrderRepository
	Menu       *repository.MenuRepository
	AdminEmail string
}

func NewUserController(db *gorm.DB, tokens *utils.TokenIssuer, orders *repository.OrderRepository, menu *repository.MenuRepository, adminEmail string) *UserController {
	return &UserController{
		DB:         db,
		Tokens:     tokens,
		Orders:     orders,
		Menu:       menu,
		AdminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
	}
}

type authResponse struct {
	Token   string              `json:"token"`
	Profile *models.UserProfile `json:"profile"`
}

func (uc *UserController) issue(p *models.UserProfile) (string, error) {
	storeID := ""
	if p.StoreID != nil {
		storeID = *p.StoreID
	}
	return uc.Tokens.GenerateToken(p.ID, p.Email, string(p.Role), storeID)
}

func (uc *UserController) findProfile(c *gin.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := uc.DB.WithContext(c.Request.Context()).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile %s: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, &utils.RepositoryError{Op: "get profile", Err: err}
	}
	return &profile, nil
}

// Register user baru
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("a valid email and password are required"))
		return
	}
	if len(req.Password) < minPasswordLength {
		utils.RespondAppError(c, utils.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength)))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := uc.DB.WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&models.UserProfile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "check email", Err: err})
		return
	}
	if count > 0 {
		utils.RespondAppError(c, utils.NewValidationError("email", "email is already registered"))
		return
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	now := time.Now()
	profile := models.UserProfile{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hashed),
		Role:         models.RoleCustomer,
		Wishlist:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// admin ditentukan dari satu alamat email yang dikonfigurasi
	if uc.AdminEmail != "" && email == uc.AdminEmail {
		profile.Role = models.RoleAdmin
	}

	if err := db.Create(&profile).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "create profile", Err: err})
		return
	}

	token, err := uc.issue(&profile)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", profile.Email, profile.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", authResponse{Token: token, Profile: &profile})
}

// Login mengembalikan JWT baru.
func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("email and password are required"))
		return
	}

	invalid := errors.New("invalid email or password")

	var profile models.UserProfile
	err := uc.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusUnauthorized, invalid)
		return
	}
	if err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "find user", Err: err})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		utils.RespondError(c, http.StatusUnauthorized, invalid)
		return
	}

	token, err := uc.issue(&profile)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("User logged in: %s", profile.Email)
	utils.RespondJSON(c, http.StatusOK, "Login successful", authResponse{Token: token, Profile: &profile})
}

// GetProfile -> GET /profile. Profil dibuat otomatis jika belum ada.
func (uc *UserController) GetProfile(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)

	profile, err := uc.findProfile(c, user.UserID)
	if errors.Is(err, utils.ErrNotFound) {
		now := time.Now()
		role := user.Role
		if role == "" {
			role = models.RoleCustomer
		}
		profile = &models.UserProfile{
			ID:        user.UserID,
			Email:     strings.ToLower(user.Email),
			Role:      role,
			Wishlist:  []string{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = uc.DB.WithContext(c.Request.Context()).Create(profile).Error; err != nil {
			err = &utils.RepositoryError{Op: "create profile", Err: err}
		}
	}
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile", profile)
}

// UpdateProfile -> PATCH /profile
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req struct {
		DisplayName     *string                 `json:"displayName"`
		PhoneNumber     *string                 `json:"phoneNumber"`
		DeliveryAddress *models.DeliveryAddress `json:"deliveryAddress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	user, _ := middlewares.CurrentUser(c)
	profile, err := uc.findProfile(c, user.UserID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.DeliveryAddress != nil {
		profile.DeliveryAddress = req.DeliveryAddress
	}
	profile.UpdatedAt = time.Now()

	if err := uc.DB.WithContext(c.Request.Context()).Save(profile).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "update profile", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", profile)
}

// ToggleWishlist -> POST /profile/wishlist/:item_id
func (uc *UserController) ToggleWishlist(c *gin.Context) {
	itemID := c.Param("item_id")
	if _, err := uc.Menu.Get(c.Request.Context(), itemID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	user, _ := middlewares.CurrentUser(c)
	profile, err := uc.findProfile(c, user.UserID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	added := profile.ToggleWishlist(itemID)
	profile.UpdatedAt = time.Now()
	if err := uc.DB.WithContext(c.Request.Context()).
		Model(profile).
		Select("wishlist", "updated_at").
		Updates(profile).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "update wishlist", Err: err})
		return
	}

	message := "Removed from wishlist"
	if added {
		message = "Added to wishlist"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{"wishlist": profile.Wishlist, "added": added})
}

// MyOrders -> GET /profile/orders
func (uc *UserController) MyOrders(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	orders, err := uc.Orders.ListRecent(c.Request.Context(), repository.DefaultRecentLimit, repository.OrderFilter{UserID: user.UserID})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your orders", orders)
}

// RegisterStore -> POST /profile/store. Pemilik toko mendapat role
// store_owner dan token baru.
func (uc *UserController) RegisterStore(c *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		Category     string `json:"category"`
		Address      string `json:"address"`
		PhoneNumber  string `json:"phoneNumber"`
		DeliveryTime string `json:"deliveryTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondAppError(c, utils.NewValidationError("name", "store name is required"))
		return
	}

	user, _ := middlewares.CurrentUser(c)
	profile, err := uc.findProfile(c, user.UserID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if profile.Role == models.RoleStoreOwner || profile.Role == models.RoleAdmin {
		utils.RespondAppError(c, utils.NewValidationError("role", "you already have a store registered or you are an admin"))
		return
	}

	var categories []string
	for _, cat := range strings.Split(req.Category, ",") {
		if cat = strings.TrimSpace(cat); cat != "" {
			categories = append(categories, cat)
		}
	}

	now := time.Now()
	store := models.Store{
		OwnerID:      profile.ID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Category:     categories,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		DeliveryTime: req.DeliveryTime,
		IsOpen:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&store).Error; err != nil {
			return err
		}
		return tx.Model(profile).Updates(map[string]interface{}{
			"role":       models.RoleStoreOwner,
			"store_id":   store.ID,
			"updated_at": now,
		}).Error
	})
	if err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "register store", Err: err})
		return
	}
	profile.Role = models.RoleStoreOwner
	profile.StoreID = &store.ID

	token, err := uc.issue(profile)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Store registered: %s by %s", store.Name, profile.Email)
	utils.RespondJSON(c, http.StatusCreated, "Store registered successfully", gin.H{
		"store":   store,
		"token":   token,
		"profile": profile,
	})
}
