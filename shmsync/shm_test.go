package shmsync

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stdin2shm/stdin2shm/modbusline"
)

// createBanks writes zeroed bank files of the given byte sizes to dir.
func createBanks(t *testing.T, dir, prefix string, sizes map[string]int) {
	t.Helper()
	for suffix, size := range sizes {
		path := filepath.Join(dir, prefix+suffix)
		if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOpenSharedMemoryDir(t *testing.T) {
	dir := t.TempDir()
	createBanks(t, dir, "test_", map[string]int{"DO": 8, "DI": 4, "AO": 16, "AI": 6})

	shm, err := OpenSharedMemoryDir(dir, "test_")
	if err != nil {
		t.Fatal(err)
	}
	defer shm.Close()

	lens := map[modbusline.Bank]int{
		modbusline.DiscreteOutput: 8,
		modbusline.DiscreteInput:  4,
		modbusline.AnalogOutput:   8,
		modbusline.AnalogInput:    3,
	}
	for bank, want := range lens {
		if got := shm.Len(bank); got != want {
			t.Errorf("Len(%s) = %d, want %d", bank, got, want)
		}
	}
	if got := shm.Name(modbusline.AnalogOutput); got != "test_AO" {
		t.Errorf("Name(ao) = %q, want test_AO", got)
	}

	shm.Write(modbusline.AnalogOutput, 2, 0x4048)
	shm.Write(modbusline.AnalogInput, 2, 0xBEEF)
	shm.Write(modbusline.DiscreteOutput, 7, 1)
	shm.Write(modbusline.DiscreteInput, 0, 1)

	if got := shm.Read(modbusline.AnalogOutput, 2); got != 0x4048 {
		t.Errorf("Read(ao, 2) = %#x, want 0x4048", got)
	}

	// The mapping is shared: the file contents change immediately.
	ao, err := os.ReadFile(filepath.Join(dir, "test_AO"))
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.NativeEndian.Uint16(ao[4:]); got != 0x4048 {
		t.Errorf("AO file word 2 = %#x, want 0x4048", got)
	}
	ai, _ := os.ReadFile(filepath.Join(dir, "test_AI"))
	if got := binary.NativeEndian.Uint16(ai[4:]); got != 0xBEEF {
		t.Errorf("AI file word 2 = %#x, want 0xbeef", got)
	}
	do, _ := os.ReadFile(filepath.Join(dir, "test_DO"))
	if do[7] != 1 || do[6] != 0 {
		t.Errorf("DO file = %v", do)
	}
	di, _ := os.ReadFile(filepath.Join(dir, "test_DI"))
	if di[0] != 1 {
		t.Errorf("DI file = %v", di)
	}
}

func TestOpenSharedMemoryEmptyBank(t *testing.T) {
	dir := t.TempDir()
	createBanks(t, dir, "m_", map[string]int{"DO": 0, "DI": 0, "AO": 2, "AI": 0})

	shm, err := OpenSharedMemoryDir(dir, "m_")
	if err != nil {
		t.Fatal(err)
	}
	defer shm.Close()

	if shm.Len(modbusline.DiscreteOutput) != 0 || shm.Len(modbusline.AnalogOutput) != 1 {
		t.Errorf("lengths do=%d ao=%d", shm.Len(modbusline.DiscreteOutput), shm.Len(modbusline.AnalogOutput))
	}
}

func TestOpenSharedMemoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		sizes    map[string]int
		wantName string
	}{
		{
			name:     "missing bank",
			sizes:    map[string]int{"DO": 1, "DI": 1, "AO": 2},
			wantName: "x_AI",
		},
		{
			name:     "odd analog size",
			sizes:    map[string]int{"DO": 1, "DI": 1, "AO": 3, "AI": 2},
			wantName: "x_AO",
		},
		{
			name:     "discrete bank too large",
			sizes:    map[string]int{"DO": modbusline.MaxRegisters + 1, "DI": 1, "AO": 2, "AI": 2},
			wantName: "x_DO",
		},
		{
			name:     "analog bank too large",
			sizes:    map[string]int{"DO": 1, "DI": 1, "AO": 2, "AI": 2*modbusline.MaxRegisters + 2},
			wantName: "x_AI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			createBanks(t, dir, "x_", tt.sizes)

			shm, err := OpenSharedMemoryDir(dir, "x_")
			if err == nil {
				shm.Close()
				t.Fatal("expected error")
			}
			var re *ResourceError
			if !errors.As(err, &re) {
				t.Fatalf("err = %T, want *ResourceError", err)
			}
			if re.Name != tt.wantName {
				t.Errorf("resource = %q, want %q", re.Name, tt.wantName)
			}
		})
	}
}

func TestSharedMemoryCloseTwice(t *testing.T) {
	dir := t.TempDir()
	createBanks(t, dir, "c_", map[string]int{"DO": 1, "DI": 1, "AO": 2, "AI": 2})

	shm, err := OpenSharedMemoryDir(dir, "c_")
	if err != nil {
		t.Fatal(err)
	}
	if err := shm.Close(); err != nil {
		t.Fatal(err)
	}
	if err := shm.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if shm.Len(modbusline.AnalogOutput) != 0 {
		t.Error("closed memory still reports registers")
	}
}

func TestApplierOnSharedMemory(t *testing.T) {
	dir := t.TempDir()
	createBanks(t, dir, "a_", map[string]int{"DO": 2, "DI": 2, "AO": 8, "AI": 8})

	shm, err := OpenSharedMemoryDir(dir, "a_")
	if err != nil {
		t.Fatal(err)
	}
	defer shm.Close()

	insts, err := modbusline.NewCommandParser(0, 0).Parse("ao:1:3.14:f32_abcd")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewApplier(shm, nil, 0).Apply(t.Context(), insts); err != nil {
		t.Fatal(err)
	}

	ao, _ := os.ReadFile(filepath.Join(dir, "a_AO"))
	if w1, w2 := binary.NativeEndian.Uint16(ao[2:]), binary.NativeEndian.Uint16(ao[4:]); w1 != 0x4048 || w2 != 0xF5C3 {
		t.Errorf("AO words = %#x %#x, want 0x4048 0xf5c3", w1, w2)
	}
}
