package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

type TableController struct {
	DB *gorm.DB
	QR *services.TableQRGenerator
}

func NewTableController(db *gorm.DB, qr *services.TableQRGenerator) *TableController {
	return &TableController{DB: db, QR: qr}
}

type tableView struct {
	models.Table
	MenuURL string `json:"menuUrl"`
}

// ListTables -> GET /admin/tables
func (tc *TableController) ListTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.WithContext(c.Request.Context()).Order("table_number ASC").Find(&tables).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "list tables", Err: err})
		return
	}

	views := make([]tableView, 0, len(tables))
	for _, t := range tables {
		views = append(views, tableView{Table: t, MenuURL: tc.QR.MenuURL(t.TableNumber)})
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

// CreateTable -> POST /admin/tables, menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"tableNumber"`
		Active      *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	table := models.Table{TableNumber: strings.TrimSpace(req.TableNumber), Active: true}
	if table.TableNumber == "" {
		utils.RespondAppError(c, utils.NewValidationError("tableNumber", "table number is required"))
		return
	}
	if req.Active != nil {
		table.Active = *req.Active
	}

	db := tc.DB.WithContext(c.Request.Context())
	var count int64
	if err := db.Model(&models.Table{}).Where("table_number = ?", table.TableNumber).Count(&count).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "check table", Err: err})
		return
	}
	if count > 0 {
		utils.RespondAppError(c, utils.NewValidationError("tableNumber", fmt.Sprintf("table %s already exists", table.TableNumber)))
		return
	}

	if err := db.Create(&table).Error; err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "create table", Err: err})
		return
	}

	utils.InfoLogger.Printf("New table created: %s (active=%t)", table.TableNumber, table.Active)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", tableView{Table: table, MenuURL: tc.QR.MenuURL(table.TableNumber)})
}

// TableQR -> GET /tables/:table_number/qr, PNG untuk dicetak di meja.
func (tc *TableController) TableQR(c *gin.Context) {
	number := c.Param("table_number")

	var table models.Table
	err := tc.DB.WithContext(c.Request.Context()).Where("table_number = ? AND active = ?", number, true).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondAppError(c, fmt.Errorf("table %s: %w", number, utils.ErrNotFound))
		return
	}
	if err != nil {
		utils.RespondAppError(c, &utils.RepositoryError{Op: "get table", Err: err})
		return
	}

	png, err := tc.QR.Generate(table.TableNumber)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "table-"+table.TableNumber+".png"))
	c.Data(http.StatusOK, "image/png", png)
}
