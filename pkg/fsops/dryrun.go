package fsops

// 📢 PlanRecorder receives the mutations a dry run would have performed.
// pkg/status implements it; keeping the interface here avoids a cycle.
type PlanRecorder interface {
	Planned(op, src, dst string)
}

// 🏭 NewDryRun wraps an FS so that reads pass through untouched while every
// mutation is recorded instead of executed. Precondition checks therefore see
// the real destination; only the commit step is suppressed.
func NewDryRun(inner FS, rec PlanRecorder) FS {
	return &dryRunFS{inner: inner, rec: rec}
}

type dryRunFS struct {
	inner FS
	rec   PlanRecorder
}

func (f *dryRunFS) ListDir(path string) ([]Entry, error) {
	return f.inner.ListDir(path)
}

func (f *dryRunFS) IsFile(path string) bool {
	return f.inner.IsFile(path)
}

func (f *dryRunFS) ReadFile(path string) ([]byte, error) {
	return f.inner.ReadFile(path)
}

func (f *dryRunFS) Exists(path string) (bool, error) {
	return f.inner.Exists(path)
}

func (f *dryRunFS) Copy(src, dst string) error {
	f.rec.Planned("copy", src, dst)
	return nil
}

func (f *dryRunFS) Move(src, dst string) error {
	f.rec.Planned("move", src, dst)
	return nil
}

func (f *dryRunFS) Delete(path string) error {
	f.rec.Planned("delete", path, "")
	return nil
}

func (f *dryRunFS) MkDir(path string) error {
	f.rec.Planned("mkdir", path, "")
	return nil
}

func (f *dryRunFS) RemoveDir(path string) error {
	f.rec.Planned("rmdir", path, "")
	return nil
}
