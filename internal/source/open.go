package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JonMunkholm/vetimport/internal/core"
)

const s3Scheme = "s3://"

// S3Config configures access to s3:// sources.
type S3Config struct {
	Region       string
	Endpoint     string // optional; S3-compatible endpoint such as MinIO
	UsePathStyle bool
}

// ObjectGetter is the subset of *s3.Client the opener needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener resolves a source reference, either a filesystem path or an
// s3://bucket/key URI, to a readable stream.
type Opener struct {
	cfg     S3Config
	maxSize int64

	mu     sync.Mutex
	client ObjectGetter
}

// NewOpener returns an Opener that builds its S3 client on first use.
// Sources larger than maxSize bytes are rejected when their size is known up
// front; zero disables the check.
func NewOpener(cfg S3Config, maxSize int64) *Opener {
	return &Opener{cfg: cfg, maxSize: maxSize}
}

// NewOpenerWithClient returns an Opener using client for s3:// sources.
func NewOpenerWithClient(client ObjectGetter, maxSize int64) *Opener {
	return &Opener{client: client, maxSize: maxSize}
}

// IsS3 reports whether ref is an s3:// URI.
func IsS3(ref string) bool {
	return strings.HasPrefix(strings.ToLower(ref), s3Scheme)
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3(uri) {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	rest := uri[len(s3Scheme):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri %q must be s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Open returns the stream behind ref and its size in bytes, or -1 when the
// size is unknown. The caller closes the stream.
func (o *Opener) Open(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	if IsS3(ref) {
		return o.openS3(ctx, ref)
	}
	return o.openFile(ref)
}

func (o *Opener) openFile(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open source: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("open source: %s is a directory", path)
	}
	if err := o.checkSize(info.Size()); err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (o *Opener) openS3(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, 0, err
	}
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, 0, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", uri, err)
	}
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	if err := o.checkSize(size); err != nil {
		out.Body.Close()
		return nil, 0, err
	}
	return out.Body, size, nil
}

func (o *Opener) checkSize(size int64) error {
	if o.maxSize > 0 && size > o.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", core.ErrFileTooLarge, size, o.maxSize)
	}
	return nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client != nil {
		return o.client, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	o.client = s3.NewFromConfig(awsCfg, func(opts *s3.Options) {
		if o.cfg.UsePathStyle {
			opts.UsePathStyle = true
		}
		if o.cfg.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.cfg.Endpoint)
		}
	})
	return o.client, nil
}

// Load opens ref and parses all of its rows.
func (o *Opener) Load(ctx context.Context, ref string) ([][]string, error) {
	rc, _, err := o.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rows, err := ReadRows(rc, o.maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return rows, nil
}
