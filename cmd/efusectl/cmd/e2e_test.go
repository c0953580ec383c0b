package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureRun executes the root command with args and returns its stdout.
func captureRun(t *testing.T, args []string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between tests
	verbose = false
	driverType = "cmsisdap"
	usbVID = ""
	usbPID = ""
	clockHz = 1000000
	forceIDCode = false
	validateConfigPath = ""
	burnConfigPath = ""
	burnForce = false

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done

	return buf.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuses.json")
	cfg := `{
  "key": "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
  "user": "0x00000042",
  "cntl": {"cfg_aes_only": true}
}`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestCommandsE2E runs the commands end-to-end against the simulator.
func TestCommandsE2E(t *testing.T) {
	cfgPath := writeTestConfig(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "idcode against simulator",
			args: []string{"idcode", "--driver", "sim"},
			wantContain: []string{
				"Xilinx",
				"XC7S50",
				"0x0362f093",
			},
		},
		{
			name: "fetch blank device",
			args: []string{"fetch", "--driver", "sim"},
			wantContain: []string{
				"KEY    " + strings.Repeat("0", 64),
				"USER   0x00000000",
				"CNTL   0x00 (none)",
				"bank 12  0x00000000",
			},
		},
		{
			name: "validate against blank device",
			args: []string{"validate", "--driver", "sim", "--config", cfgPath},
			wantContain: []string{
				"bank   physical",
				// CNTL bank: CFG_AES_Only plus its duplicate copy.
				"0x00004001",
			},
		},
		{
			name:    "burn refuses without force",
			args:    []string{"burn", "--driver", "sim", "--config", cfgPath},
			wantErr: true,
		},
		{
			name: "burn with force",
			args: []string{"burn", "--driver", "sim", "--config", cfgPath, "--force"},
			wantContain: []string{
				"bank   physical",
				"0x00004001",
			},
		},
		{
			name:    "validate with missing config file",
			args:    []string{"validate", "--driver", "sim", "--config", filepath.Join(t.TempDir(), "nope.json")},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			args:    []string{"idcode", "--driver", "bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := captureRun(t, tt.args)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}
