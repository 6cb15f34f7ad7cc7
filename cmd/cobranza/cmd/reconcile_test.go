package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.csv")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.csv",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "test file")

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseDelimiterFlag(t *testing.T) {
	tests := []struct {
		input       string
		want        rune
		expectError bool
	}{
		{"comma", ',', false},
		{"semicolon", ';', false},
		{"", ',', false},
		{"tab", 0, true},
		{";", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDelimiterFlag(tt.input)
		if tt.expectError {
			if err == nil {
				t.Errorf("parseDelimiterFlag(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDelimiterFlag(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDelimiterFlag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateReconcileFlags(t *testing.T) {
	tmpDir := t.TempDir()
	debtPath := filepath.Join(tmpDir, "cartera.csv")
	paymentsPath := filepath.Join(tmpDir, "pagos.csv")

	if err := os.WriteFile(debtPath, []byte("ID_COBRANZA,DEUDA,TIPO\nC001,100.00,CREDITO"), 0644); err != nil {
		t.Fatalf("failed to create debt file: %v", err)
	}
	if err := os.WriteFile(paymentsPath, []byte("CODIGO,MONTO\nC001,50.00"), 0644); err != nil {
		t.Fatalf("failed to create payments file: %v", err)
	}

	setFlags := func(settings map[string]interface{}) {
		viper.Reset()
		viper.Set("granularity", "key")
		viper.Set("csv-delimiter", "comma")
		viper.Set("top", 10)
		for key, value := range settings {
			viper.Set(key, value)
		}
	}
	defer viper.Reset()

	tests := []struct {
		name        string
		settings    map[string]interface{}
		expectError bool
	}{
		{
			name: "valid flags",
			settings: map[string]interface{}{
				"debt-file":     debtPath,
				"payments-file": paymentsPath,
			},
			expectError: false,
		},
		{
			name: "missing debt file flag",
			settings: map[string]interface{}{
				"payments-file": paymentsPath,
			},
			expectError: true,
		},
		{
			name: "missing payments file flag",
			settings: map[string]interface{}{
				"debt-file": debtPath,
			},
			expectError: true,
		},
		{
			name: "invalid granularity",
			settings: map[string]interface{}{
				"debt-file":     debtPath,
				"payments-file": paymentsPath,
				"granularity":   "weekly",
			},
			expectError: true,
		},
		{
			name: "negative top",
			settings: map[string]interface{}{
				"debt-file":     debtPath,
				"payments-file": paymentsPath,
				"top":           -1,
			},
			expectError: true,
		},
		{
			name: "missing output directory",
			settings: map[string]interface{}{
				"debt-file":     debtPath,
				"payments-file": paymentsPath,
				"output":        "/no/such/dir/reporte.xlsx",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(tt.settings)
			err := validateReconcileFlags(reconcileCmd, nil)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateCampaignFlags(t *testing.T) {
	tmpDir := t.TempDir()
	contactsPath := filepath.Join(tmpDir, "base.csv")
	paymentsPath := filepath.Join(tmpDir, "pagos.csv")

	if err := os.WriteFile(contactsPath, []byte("CODIGO,TIPO,NUMERO,NOMBRE,FECHA,MONTO\nC001,CREDITO,999,ANA,15/01/2024,10"), 0644); err != nil {
		t.Fatalf("failed to create contacts file: %v", err)
	}
	if err := os.WriteFile(paymentsPath, []byte("CODIGO,MONTO\nC001,50.00"), 0644); err != nil {
		t.Fatalf("failed to create payments file: %v", err)
	}

	setFlags := func(settings map[string]interface{}) {
		viper.Reset()
		viper.Set("batches", 10)
		viper.Set("delimiter", "comma")
		for key, value := range settings {
			viper.Set(key, value)
		}
	}
	defer viper.Reset()

	tests := []struct {
		name        string
		settings    map[string]interface{}
		expectError bool
	}{
		{
			name: "valid flags",
			settings: map[string]interface{}{
				"contacts-file":          contactsPath,
				"campaign-payments-file": paymentsPath,
				"periods":                []string{"2024-01"},
				"purge-paid":             true,
			},
			expectError: false,
		},
		{
			name: "no period selection",
			settings: map[string]interface{}{
				"contacts-file":          contactsPath,
				"campaign-payments-file": paymentsPath,
			},
			expectError: true,
		},
		{
			name: "periods with all-periods",
			settings: map[string]interface{}{
				"contacts-file":          contactsPath,
				"campaign-payments-file": paymentsPath,
				"periods":                []string{"2024-01"},
				"all-periods":            true,
			},
			expectError: true,
		},
		{
			name: "purge without payments file",
			settings: map[string]interface{}{
				"contacts-file": contactsPath,
				"periods":       []string{"2024-01"},
				"purge-paid":    true,
			},
			expectError: true,
		},
		{
			name: "purge disabled needs no payments file",
			settings: map[string]interface{}{
				"contacts-file": contactsPath,
				"periods":       []string{"2024-01"},
				"purge-paid":    false,
			},
			expectError: false,
		},
		{
			name: "batch count beyond cap",
			settings: map[string]interface{}{
				"contacts-file":          contactsPath,
				"campaign-payments-file": paymentsPath,
				"periods":                []string{"2024-01"},
				"batches":                100,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(tt.settings)
			err := validateCampaignFlags(campaignCmd, nil)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
