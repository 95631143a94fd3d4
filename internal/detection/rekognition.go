package detection

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// DetectLabelsAPI is the slice of the Rekognition client the detector uses.
type DetectLabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionDetector labels images with AWS Rekognition. Rekognition
// reports confidence as a percentage.
type RekognitionDetector struct {
	client    DetectLabelsAPI
	maxLabels int32
}

var _ Detector = (*RekognitionDetector)(nil)

// NewRekognitionDetector wraps a Rekognition client.
func NewRekognitionDetector(client DetectLabelsAPI) *RekognitionDetector {
	return &RekognitionDetector{client: client, maxLabels: 10}
}

func (d *RekognitionDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(d.maxLabels),
		MinConfidence: aws.Float32(MinConfidence * 100),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition detect labels: %w", err)
	}

	var labels []string
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		if l.Confidence != nil && *l.Confidence < MinConfidence*100 {
			continue
		}
		labels = append(labels, *l.Name)
	}
	return labels, nil
}
