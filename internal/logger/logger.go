package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Logger writes to a log file so output never corrupts the terminal
// UI. Until the file can be opened, lines go to stderr.
type Logger struct {
	logger       *log.Logger
	file         *os.File
	path         string
	triedFileSet bool
}

func New(path string) *Logger {
	return &Logger{
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime),
		path:   path,
	}
}

func (l *Logger) setupFile() error {
	if l.path == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return err
		}
		l.path = filepath.Join(cacheDir, "dbrowse", "dbrowse.log")
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return err
	}

	l.file = file
	l.logger.SetOutput(file)
	return nil
}

func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}

func (l *Logger) log(level, message string) {
	if l.file == nil && !l.triedFileSet {
		err := l.setupFile()
		if err != nil {
			l.logger.Print(err)
		}
		l.triedFileSet = true
	}

	l.logger.Printf("[%s]: %s", level, message)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log("info", fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log("error", fmt.Sprintf(format, args...))
}
