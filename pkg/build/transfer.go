package build

import (
	"fmt"

	"github.com/cabforge/cab/pkg/util/shell"
)

// Subtrees skipped during artifact transfer: vendored frontend
// dependency trees, large and regenerated on every install.
var transferExcludes = []string{
	"src/pybind/mgr/dashboard/frontend/node_modules",
	"src/pybind/mgr/dashboard/frontend/dist",
}

// rsyncTransfer copies the install tree into the mounted container
// root: recursive, permission- and symlink-preserving, and update-only
// so unchanged files stay in the lower layers.
func rsyncTransfer(src, dst string) error {
	args := []string{"--archive", "--update"}
	for _, ex := range transferExcludes {
		args = append(args, "--exclude="+ex)
	}
	args = append(args, src+"/", dst+"/")

	res, err := shell.Stream("rsync", args...)
	if err != nil {
		return err
	}
	if res.Code != 0 {
		return fmt.Errorf("artifact transfer failed: rsync exit status %d", res.Code)
	}
	return nil
}
