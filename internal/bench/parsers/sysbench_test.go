package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/internal/errors"
)

const sysbenchCPUOutput = `sysbench 1.0.20 (using system LuaJIT 2.1.0-beta3)

Running the test with following options:
Number of threads: 4
Initializing random number generator from current time


Prime numbers limit: 20000

Initializing worker threads...

Threads started!

CPU speed:
    events per second:  1432.87

General statistics:
    total time:                          10.0004s
    total number of events:              14332

Latency (ms):
         min:                                    2.71
         avg:                                    2.79
         max:                                    9.12
         95th percentile:                        2.86
         sum:                                39980.12
`

func TestParseCPUEvents(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{
			name:   "typical sysbench 1.0 output",
			output: sysbenchCPUOutput,
			want:   1432.87,
		},
		{
			name:   "label with extra whitespace",
			output: "CPU speed:\n    events per second:      88.10\n",
			want:   88.10,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
		{
			name:    "label missing",
			output:  "General statistics:\n    total time: 10s\n",
			wantErr: true,
		},
		{
			name:    "label present but value garbled",
			output:  "    events per second:  fast\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCPUEvents(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

const sysbenchMemoryOutput = `sysbench 1.0.20 (using system LuaJIT 2.1.0-beta3)

Running memory speed test with the following options:
  block size: 1KiB
  total size: 10240MiB
  operation: write
  scope: global

Total operations: 10485760 (8388608.00 per second)

10240.00 MiB transferred (8192.00 MiB/sec)


General statistics:
    total time:                          1.2497s
`

func TestParseMemoryThroughput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{
			name:   "typical output",
			output: sysbenchMemoryOutput,
			want:   8192.00,
		},
		{
			name:    "no transfer line",
			output:  "Total operations: 123 (456 per second)\n",
			wantErr: true,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemoryThroughput(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

const sysbenchFileIOOutput = `sysbench 1.0.20 (using system LuaJIT 2.1.0-beta3)

Running the test with following options:
Number of threads: 1

Extra file open flags: (none)
128 files, 16MiB each
2GiB total file size

Throughput:
         read, MiB/s:                  22.37
         written, MiB/s:               14.92

General statistics:
    total time:                          10.1123s
`

func TestParseFileIO(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		wantRead  float64
		wantWrite float64
		wantErr   bool
	}{
		{
			name:      "modern MiB/s labels",
			output:    sysbenchFileIOOutput,
			wantRead:  22.37,
			wantWrite: 14.92,
		},
		{
			name:      "legacy MB/s lines",
			output:    "read : 23.45MB/s\nwritten : 11.22MB/s\n",
			wantRead:  23.45 * MBToMiB,
			wantWrite: 11.22 * MBToMiB,
		},
		{
			name:    "read present but write missing",
			output:  "         read, MiB/s:                  22.37\n",
			wantErr: true,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			read, write, err := ParseFileIO(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantRead, read, 0.01)
			assert.InDelta(t, tt.wantWrite, write, 0.01)
		})
	}
}

func TestParseDDRate(t *testing.T) {
	tests := []struct {
		name    string
		stderr  string
		want    float64
		wantErr bool
	}{
		{
			name:   "MB per second",
			stderr: "1024+0 records in\n1024+0 records out\n1073741824 bytes (1.1 GB, 1.0 GiB) copied, 2.50714 s, 428 MB/s\n",
			want:   428 * MBToMiB,
		},
		{
			name:   "GB per second",
			stderr: "1073741824 bytes (1.1 GB, 1.0 GiB) copied, 0.5 s, 2.1 GB/s\n",
			want:   2.1 * 1000 * MBToMiB,
		},
		{
			name:   "comma decimal separator",
			stderr: "1073741824 bytes (1,1 GB) copied, 2,5 s, 428,5 MB/s\n",
			want:   428.5 * MBToMiB,
		},
		{
			name:    "no summary line",
			stderr:  "1024+0 records in\n1024+0 records out\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDDRate(tt.stderr)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.5)
		})
	}
}
