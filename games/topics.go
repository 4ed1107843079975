/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import "math/rand/v2"

var topics = []string{
	"a T-rex riding a bicycle",
	"eating ramen in space",
	"a sumo wrestler doing ballet",
	"a sad potato",
	"a flying penguin",
	"the Mona Lisa taking a selfie",
	"the sun wearing sunglasses",
	"a shark that is afraid of water",
	"an octopus playing guitar",
	"an alien drinking bubble tea",
	"a giraffe on a slide",
	"a lion in a skirt",
	"ice cream on fire",
	"a chicken dancing in a library",
	"a snail driving a sports car",
	"a mosquito playing tennis",
	"a cat taking a bath",
	"a superman who can't fly",
	"a constipated toilet",
	"an invisible pig",
	"a barbecue on the moon",
	"a fish with legs",
	"ants in a meeting",
	"a banana in a suit",
	"a talking hamburger",
	"a panda doing yoga",
	"a turtle who wants to be a ninja",
	"a mouse stealing cheese",
	"a bald eagle wearing a wig",
	"a pig on a diet",
	"earthworms playing tug of war",
	"a giraffe afraid of heights",
	"a fish that can't swim",
	"Santa Claus shaving his beard",
}

// RandomTopic suggests a topic for a player who can't think of one.
func RandomTopic() string {
	return topics[rand.IntN(len(topics))]
}
