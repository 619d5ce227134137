package common

import (
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strconv"
)

func MkdirForFile(fileName string) error {
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return err
	}
	return nil
}

func OpenTempFile(fullPath string) (f *os.File, err error) {
	fileNameTmp := fullPath + "." + strconv.Itoa(rand.Int())
	return os.OpenFile(fileNameTmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, os.ModePerm)
}

func ReplaceFileExt(fileName string, newExt string) string {
	logExt := path.Ext(fileName)
	return fileName[0:len(fileName)-len(logExt)] + newExt
}

// AtomicWriteFile writes contents to a temp file next to fullPath and
// renames it into place, so a reader never observes a partially written
// file (write-then-rename).
func AtomicWriteFile(fullPath string, contents []byte) error {
	f, err := OpenTempFile(fullPath)
	if err != nil {
		return err
	}
	tmpName := f.Name()

	if _, err := f.Write(contents); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, fullPath)
}
