package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Source opens url and yields raw s16le 48kHz stereo PCM.
type Source func(ctx context.Context, url string) (io.ReadCloser, error)

type ffmpegStream struct {
	io.ReadCloser
	cmd *exec.Cmd
	url string
}

func (s *ffmpegStream) Close() error {
	_ = s.ReadCloser.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if err := s.cmd.Wait(); err != nil {
		log.Debug().Err(err).Str("url", s.url).Msg("ffmpeg exited")
	}
	return nil
}

// FFmpegSource decodes url with the ffmpeg binary, reconnecting on dropped
// HTTP streams. The process dies with ctx.
func FFmpegSource(ctx context.Context, url string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}
	return &ffmpegStream{ReadCloser: reader, cmd: cmd, url: url}, nil
}
