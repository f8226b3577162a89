package eis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/eis-convert/internal/fsutil"
	"github.com/banshee-data/eis-convert/internal/monitoring"
)

// Input roles, as named in MissingFileError.
const (
	RoleGyroLog  = "d_txt"
	RoleBaseLog  = "base_txt"
	RoleSettings = "info_json"
)

const (
	logPrefix      = "eis_"
	gyroLogSuffix  = "_d.txt"
	baseLogSuffix  = "_base.txt"
	settingsName   = "info.json"
	gyroNameSuffix = "_d"
)

// Inputs holds the resolved paths of one capture directory.
type Inputs struct {
	Dir      string
	GyroLog  string
	BaseLog  string
	Settings string
}

// OutputBase returns the primary log's file name without its extension and
// without a trailing _D/_d, e.g. EIS_0001_D.txt -> EIS_0001.
func (in Inputs) OutputBase() string {
	name := filepath.Base(in.GyroLog)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasSuffix(strings.ToLower(name), gyroNameSuffix) {
		name = name[:len(name)-len(gyroNameSuffix)]
	}
	return name
}

// ClassifyName returns the role a file name plays, or "" when it plays
// none. Matching is case-insensitive.
func ClassifyName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, logPrefix) && strings.HasSuffix(lower, gyroLogSuffix):
		return RoleGyroLog
	case strings.HasPrefix(lower, logPrefix) && strings.HasSuffix(lower, baseLogSuffix):
		return RoleBaseLog
	case lower == settingsName:
		return RoleSettings
	default:
		return ""
	}
}

// Locate scans the immediate entries of dir for the three inputs. Entries
// are visited in name order and the first match for a role wins. When any
// role is unmatched the error is a *MissingFileError naming all of them.
func Locate(fsys fsutil.FileSystem, dir string) (Inputs, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return Inputs{}, fmt.Errorf("read directory %s: %w", dir, err)
	}

	in := Inputs{Dir: dir}
	slots := map[string]*string{
		RoleGyroLog:  &in.GyroLog,
		RoleBaseLog:  &in.BaseLog,
		RoleSettings: &in.Settings,
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		role := ClassifyName(e.Name())
		if role == "" {
			continue
		}
		slot := slots[role]
		if *slot != "" {
			monitoring.Logger().Debug().Str("role", role).Str("kept", filepath.Base(*slot)).
				Str("ignored", e.Name()).Msg("duplicate input ignored")
			continue
		}
		*slot = filepath.Join(dir, e.Name())
	}

	var missing []string
	for _, role := range []string{RoleGyroLog, RoleBaseLog, RoleSettings} {
		if *slots[role] == "" {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return Inputs{}, &MissingFileError{Dir: dir, Roles: missing}
	}
	return in, nil
}
