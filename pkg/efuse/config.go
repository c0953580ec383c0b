package efuse

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// CNTL register bits, per the UG470 eFuse control word. All of them are
// themselves fuses: once set they cannot be cleared.
const (
	CntlCfgAESOnly       uint8 = 1 << 0 // CFG_AES_Only: accept encrypted bitstreams only
	CntlAESExclusive     uint8 = 1 << 1 // AES_Exclusive: ignore the battery-backed key
	CntlKeyWriteDisable  uint8 = 1 << 2 // W_EN_B_Key: lock KEY programming
	CntlUserWriteDisable uint8 = 1 << 3 // W_EN_B_User: lock USER and CNTL programming
	CntlKeyReadDisable   uint8 = 1 << 4 // R_EN_B_Key: disable KEY readback
	CntlUserReadDisable  uint8 = 1 << 5 // R_EN_B_User: disable USER and CNTL readback
)

// Config is the desired logical fuse state: the 256-bit AES key, the USER
// word and the CNTL bits. The zero value requests nothing and is valid
// against any device. Setters perform no validation; checking happens in
// one place, against a fresh snapshot, in Burner.
type Config struct {
	key  [32]byte
	user uint32
	cntl uint8
}

func (c *Config) SetKey(key [32]byte) { c.key = key }
func (c *Config) SetUser(user uint32) { c.user = user }
func (c *Config) SetCntl(cntl uint8)  { c.cntl = cntl }

func (c *Config) Key() [32]byte { return c.key }
func (c *Config) User() uint32  { return c.user }
func (c *Config) Cntl() uint8   { return c.cntl }

// LoadConfig reads a desired-configuration JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("efuse: read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("efuse: parse config %s: %w", path, err)
	}
	return &c, nil
}

// configJSON is the on-disk layout: the key as 64 hex characters, the USER
// word as a 0x-prefixed string and the CNTL bits as named flags.
type configJSON struct {
	Key  string   `json:"key"`
	User string   `json:"user"`
	Cntl cntlJSON `json:"cntl"`
}

type cntlJSON struct {
	CfgAESOnly       bool `json:"cfg_aes_only"`
	AESExclusive     bool `json:"aes_exclusive"`
	KeyWriteDisable  bool `json:"key_write_disable"`
	UserWriteDisable bool `json:"user_write_disable"`
	KeyReadDisable   bool `json:"key_read_disable"`
	UserReadDisable  bool `json:"user_read_disable"`
}

func (c Config) MarshalJSON() ([]byte, error) {
	out := configJSON{
		Key:  hex.EncodeToString(c.key[:]),
		User: fmt.Sprintf("0x%08x", c.user),
		Cntl: cntlJSON{
			CfgAESOnly:       c.cntl&CntlCfgAESOnly != 0,
			AESExclusive:     c.cntl&CntlAESExclusive != 0,
			KeyWriteDisable:  c.cntl&CntlKeyWriteDisable != 0,
			UserWriteDisable: c.cntl&CntlUserWriteDisable != 0,
			KeyReadDisable:   c.cntl&CntlKeyReadDisable != 0,
			UserReadDisable:  c.cntl&CntlUserReadDisable != 0,
		},
	}
	return json.Marshal(out)
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var in configJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	c.key = [32]byte{}
	if in.Key != "" {
		raw, err := hex.DecodeString(in.Key)
		if err != nil {
			return fmt.Errorf("efuse: config key: %w", err)
		}
		if len(raw) != len(c.key) {
			return fmt.Errorf("efuse: config key is %d bytes, want %d", len(raw), len(c.key))
		}
		copy(c.key[:], raw)
	}

	c.user = 0
	if in.User != "" {
		user, err := strconv.ParseUint(in.User, 0, 32)
		if err != nil {
			return fmt.Errorf("efuse: config user: %w", err)
		}
		c.user = uint32(user)
	}

	c.cntl = 0
	set := func(on bool, bit uint8) {
		if on {
			c.cntl |= bit
		}
	}
	set(in.Cntl.CfgAESOnly, CntlCfgAESOnly)
	set(in.Cntl.AESExclusive, CntlAESExclusive)
	set(in.Cntl.KeyWriteDisable, CntlKeyWriteDisable)
	set(in.Cntl.UserWriteDisable, CntlUserWriteDisable)
	set(in.Cntl.KeyReadDisable, CntlKeyReadDisable)
	set(in.Cntl.UserReadDisable, CntlUserReadDisable)
	return nil
}
