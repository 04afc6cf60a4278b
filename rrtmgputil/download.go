/*
Copyright © 2024 the RTE-Go authors.
This file is part of RTE-Go.

RTE-Go is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RTE-Go is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RTE-Go.  If not, see <http://www.gnu.org/licenses/>.
*/

package rrtmgputil

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/cenkalti/backoff"
)

// maybeDownload checks if the input is an existing local file. If it is
// a URL instead, it downloads the file to a temporary directory and
// returns the path to the downloaded file.
func maybeDownload(p string) (string, error) {
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p, nil
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		dir, err := ioutil.TempDir("", "rte")
		if err != nil {
			return p, fmt.Errorf("rte: failed creating temporary download directory: %v", err)
		}
		return downloadFile(p, dir)
	}
	return p, fmt.Errorf("rte: input file %s does not exist", p)
}

// downloadFile fetches a URL into dir, retrying transient failures
// with exponential backoff, and returns the local path.
func downloadFile(url, dir string) (string, error) {
	dst := path.Join(dir, path.Base(url))
	op := func() error {
		resp, err := http.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("rte: downloading %s: status %s", url, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			// Client errors will not get better with retrying.
			return backoff.Permanent(fmt.Errorf("rte: downloading %s: status %s", url, resp.Status))
		}
		w, err := os.Create(dst)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer w.Close()
		_, err = io.Copy(w, resp.Body)
		return err
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)); err != nil {
		return "", err
	}
	return dst, nil
}
