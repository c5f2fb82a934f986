package bucket

import "os"

// SecureFile is a transcript file opened through an os.Root, so a sanitized
// name can never resolve outside the output directory.
type SecureFile struct {
	*os.File
	root *os.Root
}

// Close closes the file and then its root. The file error wins when both fail.
func (sf *SecureFile) Close() error {
	fileErr := sf.File.Close()
	rootErr := sf.root.Close()

	if fileErr != nil {
		return fileErr
	}
	return rootErr
}

// SecureOpen opens filename for reading inside rootPath. Names that climb out
// of rootPath, directly or through a symlink, fail with an error.
func SecureOpen(rootPath, filename string) (*SecureFile, error) {
	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, err
	}

	file, err := root.Open(filename)
	if err != nil {
		root.Close()
		return nil, err
	}

	return &SecureFile{File: file, root: root}, nil
}
