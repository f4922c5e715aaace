package main

import (
	"fmt"
)

func Usage() {
	// pflag.Usage sorts by long name and shows "[=false]" next to every
	// boolean, which reads badly for a gzip-like option set.
	fmt.Println(`Usage: gzinga [OPTION]... [FILE]...
Compress or uncompress FILEs (by default, compress FILES in-place) into
gzip files that carry an index of checkpoints.

Mandatory arguments to long options are mandatory for short options too.

  -c, --stdout      write on standard output, keep original files unchanged
  -d, --decompress  decompress
  -f, --force       force overwrite of output file and compress links
  -h, --help        give this help
  -k, --keep        keep (don't delete) input files
  -L, --license     display software license
  -t, --test        test compressed file integrity
  -l, --list        list the index (key, offset) of each container
  -x, --extract=KEY decompress to standard output starting at KEY
  -v, --verbose     verbose mode
  -V, --version     display version number
  -1, --fast        compress faster
  -9, --best        compress better
      --every=N     checkpoint every N lines (keys 1, 2, 3...)
      --block=SIZE  checkpoint every SIZE bytes (keys are offsets)
      --rsyncable   make rsync-friendly archive
      --splits=SIZE print member-aligned ranges (start, end, length)
                    of about SIZE bytes

With no FILE, or when FILE is -, read standard input.
-l, -x and --splits need a regular file.`)
}

func License() {
	fmt.Println("gzinga", VERSION)
	fmt.Println(`
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

   http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.`)
}
