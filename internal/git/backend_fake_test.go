package git

import "errors"

type fakeBackend struct {
	repoPath string
	gitDir   string

	headBranchFunc     func() (string, bool, error)
	listRefsFunc       func() ([]Ref, error)
	remoteURLsFunc     func() (map[string]string, error)
	trackingFunc       func() (map[string]Tracking, error)
	commitsBetweenFunc func(base, tip string) ([]Commit, error)
	localChangesFunc   func() (LocalChanges, error)

	lastBase string
	lastTip  string
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) GitDir() string { return f.gitDir }

func (f *fakeBackend) HeadBranch() (string, bool, error) {
	if f.headBranchFunc != nil {
		return f.headBranchFunc()
	}
	return "", false, errors.New("unexpected HeadBranch call")
}

func (f *fakeBackend) ListRefs() ([]Ref, error) {
	if f.listRefsFunc != nil {
		return f.listRefsFunc()
	}
	return nil, errors.New("unexpected ListRefs call")
}

func (f *fakeBackend) RemoteURLs() (map[string]string, error) {
	if f.remoteURLsFunc != nil {
		return f.remoteURLsFunc()
	}
	return nil, errors.New("unexpected RemoteURLs call")
}

func (f *fakeBackend) TrackingConfig() (map[string]Tracking, error) {
	if f.trackingFunc != nil {
		return f.trackingFunc()
	}
	return nil, errors.New("unexpected TrackingConfig call")
}

func (f *fakeBackend) CommitsBetween(base, tip string) ([]Commit, error) {
	f.lastBase = base
	f.lastTip = tip
	if f.commitsBetweenFunc != nil {
		return f.commitsBetweenFunc(base, tip)
	}
	return nil, errors.New("unexpected CommitsBetween call")
}

func (f *fakeBackend) LocalChangesStatus() (LocalChanges, error) {
	if f.localChangesFunc != nil {
		return f.localChangesFunc()
	}
	return LocalChanges{}, errors.New("unexpected LocalChangesStatus call")
}
