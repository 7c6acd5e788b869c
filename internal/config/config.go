// Package config holds the service configuration: an immutable snapshot
// loaded at startup and replaced wholesale on save.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Printer describes the target device and paper geometry.
type Printer struct {
	Transport  string `json:"transport"` // usb, serial, network
	USBVendor  uint16 `json:"usb_vendor,omitempty"`
	USBProduct uint16 `json:"usb_product,omitempty"`
	Device     string `json:"device,omitempty"` // serial device path
	Baud       int    `json:"baud,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`

	Encoding   string `json:"encoding"`
	LineWidth  int    `json:"line_width"`  // characters per line for the text path
	PixelWidth int    `json:"pixel_width"` // dot width of the print head
}

// Layout controls receipt composition. Scales are percentages, clamped to
// 0–100 at the point of use.
type Layout struct {
	FontFamily    string `json:"font_family"`
	FontPath      string `json:"font_path"`
	FontSize      int    `json:"font_size"`
	FontSizeSmall int    `json:"font_size_small"`
	LineSpacing   int    `json:"line_spacing"`

	Currency   string `json:"currency"`
	VolumeUnit string `json:"volume_unit"`

	HeaderImage       string `json:"header_image"`
	HeaderImageScale  int    `json:"header_image_scale"`
	HeaderTitle       string `json:"header_title"`
	HeaderDescription string `json:"header_description"`
	ReceiptTitle      string `json:"receipt_title"`
	FooterLabel       string `json:"footer_label"`
	FooterImage       string `json:"footer_image"`
	FooterImageScale  int    `json:"footer_image_scale"`
	FooterQR          string `json:"footer_qr"`
}

// Service is the HTTP listener configuration.
type Service struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Config is one complete settings snapshot.
type Config struct {
	Printer Printer `json:"printer"`
	Layout  Layout  `json:"layout"`
	Service Service `json:"service"`
}

// Default returns the stock configuration for a 58 mm head.
func Default() Config {
	return Config{
		Printer: Printer{
			Transport:  "network",
			Host:       "127.0.0.1",
			Port:       9100,
			Baud:       9600,
			Encoding:   "utf-8",
			LineWidth:  44,
			PixelWidth: 384,
		},
		Layout: Layout{
			FontFamily:        "Sarabun-SemiBold",
			FontPath:          "assets/fonts/Sarabun/Sarabun-SemiBold.ttf",
			FontSize:          24,
			FontSizeSmall:     20,
			LineSpacing:       6,
			Currency:          "บาท",
			VolumeUnit:        "ลิตร",
			HeaderImageScale:  100,
			HeaderTitle:       "Your Gas Station",
			HeaderDescription: "Your Address Here",
			ReceiptTitle:      "ใบเสร็จน้ำมัน",
			FooterLabel:       "Thank you!",
			FooterImageScale:  100,
		},
		Service: Service{
			Host: "0.0.0.0",
			Port: 5000,
		},
	}
}

// Load reads a snapshot from disk. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes a snapshot to disk.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Store hands out configuration snapshots and replaces them wholesale on
// save. Render calls hold on to the snapshot they started with.
type Store struct {
	path string
	mu   sync.RWMutex
	cur  Config
}

// NewStore loads the snapshot at path (or the defaults when absent).
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, cur: cfg}, nil
}

// Snapshot returns the current configuration by value.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Replace swaps in a new snapshot and persists it.
func (s *Store) Replace(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := Save(s.path, cfg); err != nil {
		return err
	}
	s.cur = cfg
	return nil
}
