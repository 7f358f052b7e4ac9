package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// FailureKind selects the summarization heuristic for a failed run.
type FailureKind string

// Supported failure kinds.
const (
	KindYocto   FailureKind = "yocto"
	KindGeneric FailureKind = "generic"
)

// AllFailureKinds returns every supported kind in display order.
func AllFailureKinds() []FailureKind {
	return []FailureKind{KindYocto, KindGeneric}
}

// String returns the kind as a string.
func (k FailureKind) String() string {
	return string(k)
}

// ParseFailureKind parses a kind name case-insensitively.
// "other" is accepted as an alias of generic.
func ParseFailureKind(s string) (FailureKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yocto":
		return KindYocto, nil
	case "generic", "other":
		return KindGeneric, nil
	default:
		return "", fmt.Errorf("%w: %q (expected one of: yocto, generic)", ErrInvalidKind, s)
	}
}

// YoctoTask is the bitbake task that failed. It doubles as an issue label.
type YoctoTask string

// Bitbake tasks recognized from failure log names.
const (
	YoctoTaskFetch           YoctoTask = "do_fetch"
	YoctoTaskUnpack          YoctoTask = "do_unpack"
	YoctoTaskPatch           YoctoTask = "do_patch"
	YoctoTaskConfigure       YoctoTask = "do_configure"
	YoctoTaskCompile         YoctoTask = "do_compile"
	YoctoTaskInstall         YoctoTask = "do_install"
	YoctoTaskPackage         YoctoTask = "do_package"
	YoctoTaskPopulateSysroot YoctoTask = "do_populate_sysroot"
	YoctoTaskRootfs          YoctoTask = "do_rootfs"
	YoctoTaskImage           YoctoTask = "do_image"
	YoctoTaskMisc            YoctoTask = "misc"
)

var knownYoctoTasks = []YoctoTask{
	YoctoTaskFetch,
	YoctoTaskUnpack,
	YoctoTaskPatch,
	YoctoTaskConfigure,
	YoctoTaskCompile,
	YoctoTaskInstall,
	YoctoTaskPackage,
	YoctoTaskPopulateSysroot,
	YoctoTaskRootfs,
	YoctoTaskImage,
}

var yoctoTaskRe = regexp.MustCompile(`log\.(do_[a-zA-Z0-9_]+)`)

// YoctoTaskFromLogName derives the failed task from a failure log name
// such as "log.do_fetch.21616". Unknown tasks map to YoctoTaskMisc.
func YoctoTaskFromLogName(name string) YoctoTask {
	m := yoctoTaskRe.FindStringSubmatch(name)
	if m == nil {
		return YoctoTaskMisc
	}
	for _, t := range knownYoctoTasks {
		if string(t) == m[1] {
			return t
		}
	}
	return YoctoTaskMisc
}

// Logfile is a located failure log attached to a summary.
type Logfile struct {
	Name     string
	Contents string
}

// ErrorSummary is the result of summarizing a failed job's log.
type ErrorSummary struct {
	Logfile   *Logfile
	Kind      FailureKind
	YoctoTask YoctoTask
	Summary   string
}

// FailureLabel returns the issue label implied by the summary, or "" for none.
func (s ErrorSummary) FailureLabel() string {
	if s.Kind != KindYocto {
		return ""
	}
	if s.YoctoTask == "" {
		return string(YoctoTaskMisc)
	}
	return string(s.YoctoTask)
}

// LogfileName returns the name of the attached logfile, if any.
func (s ErrorSummary) LogfileName() string {
	if s.Logfile == nil {
		return ""
	}
	return s.Logfile.Name
}
