package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// ClassifiedLabel is one candidate from the fallback classifier.
type ClassifiedLabel struct {
	Name       string
	Confidence float64
}

// LabelClassifier is the secondary recognition backend: a general-purpose
// image classifier whose labels the VisionService filters for food terms.
type LabelClassifier interface {
	Classify(ctx context.Context, image []byte) ([]ClassifiedLabel, error)
}

// RekognitionService classifies images via AWS Rekognition DetectLabels.
type RekognitionService struct {
	client *rekognition.Client
}

func NewRekognitionService(ctx context.Context, region string) (*RekognitionService, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for Rekognition: %w", err)
	}
	return &RekognitionService{client: rekognition.NewFromConfig(cfg)}, nil
}

// Classify returns the top label candidates for a JPEG image.
func (r *RekognitionService) Classify(ctx context.Context, image []byte) ([]ClassifiedLabel, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(50),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels failed: %w", err)
	}

	labels := make([]ClassifiedLabel, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		var conf float64
		if l.Confidence != nil {
			conf = float64(*l.Confidence) / 100
		}
		labels = append(labels, ClassifiedLabel{Name: *l.Name, Confidence: conf})
	}
	return labels, nil
}
