// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/breader"
	"github.com/spf13/cobra"
)

func checkError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getListFromFile reads one path per line via breader's parallel line
// reader, the idiom unikmer/cmd/decode.go uses for --infile-list.
func getListFromFile(file string) ([]string, error) {
	reader, err := breader.NewDefaultBufferedReader(file)
	if err != nil {
		return nil, err
	}
	var files []string
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		for _, data := range chunk.Data {
			line := data.(string)
			if line == "" {
				continue
			}
			files = append(files, line)
		}
	}
	return files, nil
}

// getFileListFromArgsAndFile merges positional args with an --infile-list
// file, falling back to stdin when both are empty.
func getFileListFromArgsAndFile(cmd *cobra.Command, args []string, listFlag string) []string {
	var files []string
	if listFile := getFlagString(cmd, listFlag); listFile != "" {
		fs, err := getListFromFile(listFile)
		checkError(err)
		files = append(files, fs...)
	}
	files = append(files, args...)
	if len(files) == 0 {
		files = []string{"-"}
	}
	return files
}

func checkFiles(files ...string) {
	for _, file := range files {
		if file == "-" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			checkError(fmt.Errorf("check input file: %s", err))
		}
	}
}

// parseMemory parses a human memory size ("4G", "512M") via go-humanize,
// the library the teacher already carries for operator-facing sizes.
func parseMemory(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := humanize.ParseBytes(s)
	checkError(err)
	return int64(n)
}
