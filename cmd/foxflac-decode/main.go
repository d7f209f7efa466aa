// foxflac-decode is a tool which drives the pull-style foxflac.Decoder over
// a FLAC file, feeding it fixed-size chunks of input (demonstrating that the
// decoder never needs the whole file buffered at once) and writing the
// decoded PCM to a WAV file or a headerless raw PCM stream.
package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/mewkiz/foxflac"
	"github.com/mewkiz/foxflac/internal/pcm"
	"github.com/mewkiz/foxflac/meta"
)

var (
	flagOutput         string
	flagMaxChannels    uint8
	flagMaxBlockSize   uint32
	flagChunkSize      int
	flagOneByteAtATime bool
	flagRaw            bool
	flagForce          bool
)

func init() {
	pflag.StringVarP(&flagOutput, "output", "o", "", "output file path (default: input path with its extension replaced)")
	pflag.Uint8Var(&flagMaxChannels, "max-channels", foxflac.MaxChannelCount, "maximum channel count the decoder will accept")
	pflag.Uint32Var(&flagMaxBlockSize, "max-block-size", foxflac.MaxBlockSize, "maximum block size (samples per channel) the decoder will accept")
	pflag.IntVar(&flagChunkSize, "chunk-size", 32*1024, "input bytes fed to Process per iteration")
	pflag.BoolVar(&flagOneByteAtATime, "one-byte-at-a-time", false, "feed the decoder a single input byte per iteration, overriding --chunk-size")
	pflag.BoolVar(&flagRaw, "raw", false, "write headerless interleaved PCM instead of a WAV file")
	pflag.BoolVarP(&flagForce, "force", "f", false, "overwrite the output file if it already exists")
}

func main() {
	pflag.Parse()
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if pflag.NArg() == 0 {
		logger.Fatal("usage: foxflac-decode [flags] FILE...")
	}
	for _, path := range pflag.Args() {
		if err := decodeFile(logger, path); err != nil {
			logger.Fatal("decode failed", "file", path, "err", err)
		}
	}
}

func decodeFile(logger *log.Logger, path string) error {
	fr, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer fr.Close()

	outPath := flagOutput
	if outPath == "" {
		ext := ".wav"
		if flagRaw {
			ext = ".pcm"
		}
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ext
	}
	if !flagForce {
		if _, err := os.Stat(outPath); err == nil {
			return errors.Errorf("output file %q already exists (use -f to overwrite)", outPath)
		}
	}
	fw, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer fw.Close()

	dec, err := foxflac.NewDecoder(flagMaxBlockSize, flagMaxChannels)
	if err != nil {
		return errors.Wrap(err, "construct decoder")
	}

	chunkSize := flagChunkSize
	if flagOneByteAtATime {
		chunkSize = 1
	}
	inBuf := make([]byte, chunkSize)
	outBuf := make([]int32, int(flagMaxChannels)*int(flagMaxBlockSize))

	sink := &frameSink{w: fw, raw: flagRaw}
	var sampleSize int64
	resyncCount := 0
	lastState := foxflac.StateInit

	for {
		n, readErr := fr.Read(inBuf)
		if readErr != nil && readErr != io.EOF {
			return errors.Wrap(readErr, "read input")
		}
		chunk := inBuf[:n]
		for {
			consumed, produced, state := dec.Process(chunk, outBuf)
			chunk = chunk[consumed:]

			if state == foxflac.StateEndOfMetadata && lastState != state {
				sampleRate, _ := dec.StreamInfo(meta.KeySampleRate)
				channelCount, _ := dec.StreamInfo(meta.KeyChannelCount)
				sampleSize, _ = dec.StreamInfo(meta.KeySampleSize)
				logger.Info("metadata parsed",
					"sample_rate", sampleRate, "channels", channelCount, "sample_size", sampleSize)
				if err := sink.open(int(sampleRate), int(channelCount), int(sampleSize)); err != nil {
					return err
				}
			}
			if state == foxflac.StateSearchFrame && lastState == foxflac.StateInFrame {
				resyncCount++
				logger.Warn("resynchronizing after malformed frame", "count", resyncCount)
			}
			if state == foxflac.StateErr {
				return errors.New("decoder entered an unrecoverable error state")
			}

			if produced > 0 {
				if err := sink.write(outBuf[:produced], uint8(sampleSize)); err != nil {
					return err
				}
			}

			lastState = state
			if consumed == 0 && produced == 0 {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	if err := sink.close(); err != nil {
		return err
	}
	logger.Info("decode complete", "file", path, "output", outPath, "resyncs", resyncCount)
	return nil
}

// frameSink abstracts over the two output encodings the CLI supports so the
// decode loop above doesn't need to branch on flagRaw. It lazily opens the
// WAV encoder once the stream's sample rate and channel count are known,
// which only happens at StateEndOfMetadata.
type frameSink struct {
	raw   bool
	w     io.Writer
	enc   *wav.Encoder
	chans int
	ready bool
}

func (s *frameSink) open(sampleRate, channelCount, sampleSize int) error {
	s.chans = channelCount
	if s.raw {
		s.ready = true
		return nil
	}
	const audioFormatPCM = 1
	s.enc = wav.NewEncoder(s.w.(io.WriteSeeker), sampleRate, sampleSize, channelCount, audioFormatPCM)
	s.ready = true
	return nil
}

func (s *frameSink) write(samples []int32, sampleSize uint8) error {
	if !s.ready {
		return errors.New("frameSink: write before open (STREAMINFO not yet seen)")
	}
	if s.raw {
		return pcm.WriteRaw(s.w, samples, sampleSize)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: s.chans, SampleRate: int(s.enc.SampleRate)},
		Data:           pcm.Narrow(samples, sampleSize),
		SourceBitDepth: int(sampleSize),
	}
	return s.enc.Write(buf)
}

func (s *frameSink) close() error {
	if s.enc != nil {
		return s.enc.Close()
	}
	return nil
}
