package file

import (
	"path/filepath"
	"strings"

	"github.com/jsphweid/utsu/util"
	"golang.org/x/exp/slices"
)

var otoFiles = []string{"oto.ini", "oto_ini.txt"}

// FindVoicebanks returns every directory under root that holds an oto file,
// sorted. Sub-folders of a voicebank are not voicebanks of their own.
func FindVoicebanks(root string, maxNum int) ([]string, error) {
	paths, err := util.GatherPaths(root, otoFiles, 0)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, p := range paths {
		name := filepath.Base(p)
		if name != otoFiles[0] && name != otoFiles[1] {
			// GatherPaths matches suffixes, so "my_oto.ini" would match too.
			continue
		}
		dirs = append(dirs, filepath.Dir(p))
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	var res []string
	for _, dir := range dirs {
		if slices.IndexFunc(res, func(parent string) bool { return isWithin(parent, dir) }) >= 0 {
			continue
		}
		res = append(res, dir)
		if maxNum > 0 && len(res) == maxNum {
			break
		}
	}
	return res, nil
}

// CreateVoicebankNumMap numbers dirs from 0 so they can be picked by index.
func CreateVoicebankNumMap(dirs []string) map[int]string {
	res := make(map[int]string, len(dirs))
	for i, v := range dirs {
		res[i] = v
	}
	return res
}

func isWithin(parent, dir string) bool {
	return strings.HasPrefix(dir, parent+string(filepath.Separator))
}
