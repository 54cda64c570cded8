package services

import (
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// TableQRGenerator renders the QR code printed on each table. Scanning it
// opens the menu with the table number prefilled.
type TableQRGenerator struct {
	BaseURL string
	Size    int
}

func NewTableQRGenerator(baseURL string) *TableQRGenerator {
	return &TableQRGenerator{BaseURL: strings.TrimRight(baseURL, "/"), Size: 256}
}

func (g *TableQRGenerator) MenuURL(tableNumber string) string {
	return g.BaseURL + "/menu?table=" + url.QueryEscape(tableNumber)
}

func (g *TableQRGenerator) Generate(tableNumber string) ([]byte, error) {
	return qrcode.Encode(g.MenuURL(tableNumber), qrcode.Medium, g.Size)
}
