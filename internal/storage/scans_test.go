package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/config"
	"github.com/dmitrijs2005/vetintake/internal/cryptox"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	in      *s3.GetObjectInput
	expires time.Duration
	err     error
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.in = in
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Bucket + "/" + *in.Key + "?sig=x"}, nil
}

func newTestStore(p *fakePutter, ps *fakePresigner) *ScanStore {
	s := NewScanStore(p, ps, "cards", 5*time.Minute)
	s.now = func() time.Time { return time.UnixMilli(1718000000123) }
	return s
}

func TestUpload(t *testing.T) {
	p := &fakePutter{}
	s := newTestStore(p, &fakePresigner{})

	out, err := s.Upload(context.Background(), ScanUpload{
		PetID:       "pet-1",
		FileName:    "carteira.png",
		ContentType: "image/png",
		Data:        pngHeader,
	})
	require.NoError(t, err)

	assert.Equal(t, "pet-1/1718000000123-carteira.png", out.Key)
	assert.Equal(t, cryptox.Fingerprint(pngHeader), out.Fingerprint)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, int64(len(pngHeader)), out.Size)

	require.NotNil(t, p.in)
	assert.Equal(t, "cards", *p.in.Bucket)
	assert.Equal(t, out.Key, *p.in.Key)
	assert.Equal(t, "*", *p.in.IfNoneMatch)
	assert.Equal(t, out.Fingerprint, p.in.Metadata["fingerprint"])
	assert.True(t, bytes.Equal(pngHeader, p.body))
}

func TestUpload_SniffsContentType(t *testing.T) {
	p := &fakePutter{}
	s := newTestStore(p, &fakePresigner{})

	out, err := s.Upload(context.Background(), ScanUpload{PetID: "pet-1", FileName: "x", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, "image/png", *p.in.ContentType)
}

func TestUpload_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   ScanUpload
		want error
	}{
		{"pdf", ScanUpload{PetID: "p", FileName: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, common.ErrUnsupportedImage},
		{"sniffed text", ScanUpload{PetID: "p", FileName: "a", Data: []byte("hello")}, common.ErrUnsupportedImage},
		{"empty", ScanUpload{PetID: "p", FileName: "a.png", ContentType: "image/png"}, common.ErrUnsupportedImage},
		{"too large", ScanUpload{PetID: "p", FileName: "a.png", ContentType: "image/png", Data: make([]byte, MaxImageSize+1)}, common.ErrImageTooLarge},
		{"no pet", ScanUpload{FileName: "a.png", ContentType: "image/png", Data: pngHeader}, common.ErrMissingTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePutter{}
			_, err := newTestStore(p, &fakePresigner{}).Upload(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, p.in, "nothing must be uploaded")
		})
	}
}

func TestUpload_MaxSizeAccepted(t *testing.T) {
	data := make([]byte, MaxImageSize)
	u := ScanUpload{PetID: "p", FileName: "a.jpg", ContentType: "image/jpeg", Data: data}
	require.NoError(t, Validate(&u))
}

func TestUpload_PutError(t *testing.T) {
	p := &fakePutter{err: errors.New("PreconditionFailed")}
	_, err := newTestStore(p, &fakePresigner{}).Upload(context.Background(),
		ScanUpload{PetID: "p", FileName: "a.png", ContentType: "image/png", Data: pngHeader})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PreconditionFailed")
}

func TestKey(t *testing.T) {
	at := time.UnixMilli(42)
	assert.Equal(t, "pet/42-card.jpg", Key("pet", "card.jpg", at))
	assert.Equal(t, "pet/42-card.jpg", Key("pet", "../../etc/card.jpg", at))
	assert.Equal(t, "pet/42-card.jpg", Key("pet", `C:\fotos\card.jpg`, at))
	assert.Equal(t, "pet/42-scan", Key("pet", "", at))
}

func TestPresignGet(t *testing.T) {
	ps := &fakePresigner{}
	url, err := newTestStore(&fakePutter{}, ps).PresignGet(context.Background(), "pet/1-a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/cards/pet/1-a.png?sig=x", url)
	assert.Equal(t, 5*time.Minute, ps.expires)

	ps.err = errors.New("no creds")
	_, err = newTestStore(&fakePutter{}, ps).PresignGet(context.Background(), "k")
	require.Error(t, err)
}

func TestNewS3ScanStore(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(c aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(c, optFns...)
	}

	s, err := NewS3ScanStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "vaccination-cards", s.bucket)
	assert.Equal(t, 15*time.Minute, s.ttl)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}
	_, err = NewS3ScanStore(context.Background(), cfg)
	require.Error(t, err)
}
